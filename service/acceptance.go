package service

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

// square is the 11 byte record x, x*x, sqrt(x) encoded for a JSON body.
func square(x int) string {
	record := make([]byte, 11)
	record[0] = byte(x)
	binary.LittleEndian.PutUint16(record[1:], uint16(x*x))
	binary.LittleEndian.PutUint64(record[3:], math.Float64bits(math.Sqrt(float64(x))))
	return base64.StdEncoding.EncodeToString(record)
}

func key(x int) string {
	return base64.StdEncoding.EncodeToString([]byte{byte(x)})
}

func errorStatus(resp *apitest.Response) interface{} {
	body, _ := resp.BodyJson().(JSON)
	e, _ := body["error"].(JSON)
	return e["status"]
}

func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Version", func(a *biff.A) {
		resp := apiRequest("GET", "/version").Do()
		Save(resp, "Version", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusOK)
		body := resp.BodyJson().(JSON)
		biff.AssertEqualJson(body["client_version"], 16)
		biff.AssertEqual(body["client_version_type"], "CLIENT_ENGINE")
	})

	a.Alternative("Create file", func(a *biff.A) {
		resp := apiRequest("POST", "/files").
			WithBodyJson(JSON{
				"name": "squares.btr",
				"file": JSON{
					"fixed_record_length": 11,
				},
				"indexes": []JSON{
					{
						"segments": []JSON{
							{"offset": 0, "length": 1, "data_type": "UNSIGNED_BINARY"},
						},
					},
				},
			}).Do()
		Save(resp, "Create file", `
			Creates a file with its initial indexes. Enumerations are written by
			name and byte strings in base64.
		`)

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		body := resp.BodyJson().(JSON)
		biff.AssertEqual(body["file_name"], "squares.btr")
		biff.AssertEqualJson(body["record_count"], 0)
		biff.AssertEqualJson(body["index_count"], 1)
		biff.AssertEqualJson(body["handle_count"], 0)

		a.Alternative("Create file again", func(a *biff.A) {
			resp := apiRequest("POST", "/files").
				WithBodyJson(JSON{
					"name": "squares.btr",
					"file": JSON{"fixed_record_length": 11},
				}).Do()
			Save(resp, "Create file - already exists", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
			biff.AssertEqual(errorStatus(resp), "FILE_ALREADY_EXISTS")
		})

		a.Alternative("Get file", func(a *biff.A) {
			resp := apiRequest("GET", "/files/squares.btr").Do()
			Save(resp, "Get file", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			body := resp.BodyJson().(JSON)
			biff.AssertEqual(body["file_name"], "squares.btr")
			biff.AssertEqual(body["continuous_operation"], false)
		})

		a.Alternative("List files", func(a *biff.A) {
			resp := apiRequest("GET", "/files").Do()
			Save(resp, "List files", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []JSON{
				{"name": "squares.btr", "records": 0, "indexes": 1, "handles": 0},
			})
		})

		a.Alternative("Find files", func(a *biff.A) {
			resp := apiRequest("POST", "/files:find").
				WithBodyJson(JSON{
					"filter": JSON{"indexes": JSON{"$gte": 1}},
				}).Do()
			Save(resp, "Find files", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), JSON{"name": "squares.btr", "records": 0, "indexes": 1, "handles": 0})

			resp = apiRequest("POST", "/files:find").
				WithBodyJson(JSON{
					"filter": JSON{"name": "roots.btr"},
				}).Do()
			biff.AssertEqual(resp.BodyString(), "")
		})

		a.Alternative("Rename file", func(a *biff.A) {
			resp := apiRequest("POST", "/files/squares.btr:renameFile").
				WithBodyJson(JSON{"name": "roots.btr"}).Do()
			Save(resp, "Rename file", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.BodyJson().(JSON)["file_name"], "roots.btr")

			resp = apiRequest("GET", "/files/squares.btr").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			biff.AssertEqual(errorStatus(resp), "FILE_NOT_FOUND")
		})

		a.Alternative("Delete file", func(a *biff.A) {
			resp := apiRequest("POST", "/files/squares.btr:deleteFile").Do()
			Save(resp, "Delete file", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

			resp = apiRequest("GET", "/files").Do()
			biff.AssertEqualJson(resp.BodyJson(), []JSON{})
		})

		a.Alternative("Continuous operation", func(a *biff.A) {
			resp := apiRequest("POST", "/files/squares.btr:continuousBegin").Do()
			Save(resp, "Continuous operation - begin", `
				Continuous operation lasts until it is ended, across requests.
			`)
			biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

			resp = apiRequest("GET", "/files/squares.btr").Do()
			biff.AssertEqual(resp.BodyJson().(JSON)["continuous_operation"], true)

			resp = apiRequest("POST", "/files/squares.btr:continuousBegin").Do()
			biff.AssertEqual(errorStatus(resp), "INCOMPATIBLE_MODE_ERROR")

			resp = apiRequest("POST", "/files/squares.btr:continuousEnd").Do()
			Save(resp, "Continuous operation - end", ``)
			biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

			resp = apiRequest("GET", "/files/squares.btr").Do()
			biff.AssertEqual(resp.BodyJson().(JSON)["continuous_operation"], false)
		})

		a.Alternative("Insert records", func(a *biff.A) {
			records := []string{}
			for x := 0; x < 10; x++ {
				records = append(records, square(x))
			}
			resp := apiRequest("POST", "/files/squares.btr:insert").
				WithBodyJson(JSON{"records": records}).Do()
			Save(resp, "Insert records", `
				Every record is created independently; statuses and positions
				are reported per record.
			`)

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			body := resp.BodyJson().(JSON)
			biff.AssertEqual(len(body["statuses"].([]interface{})), 10)
			biff.AssertEqualJson(body["positions"].([]interface{})[9], 10)
			biff.AssertEqual(body["status"], "NO_ERROR")

			a.Alternative("Insert duplicates", func(a *biff.A) {
				resp := apiRequest("POST", "/files/squares.btr:insert").
					WithBodyJson(JSON{"records": []string{square(3), square(10)}}).Do()
				Save(resp, "Insert records - duplicate key", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusMultiStatus)
				body := resp.BodyJson().(JSON)
				biff.AssertEqualJson(body["statuses"], []string{"DUPLICATE_KEY_VALUE", "NO_ERROR"})
				biff.AssertEqualJson(body["positions"], []int{0, 11})
			})

			a.Alternative("Retrieve equal", func(a *biff.A) {
				resp := apiRequest("POST", "/files/squares.btr:retrieve").
					WithBodyJson(JSON{"comparison": "EQUAL", "key": key(3)}).Do()
				Save(resp, "Retrieve - equal", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"records": []JSON{
						{"position": 4, "data": square(3)},
					},
					"status": "NO_ERROR",
				})
			})

			a.Alternative("Retrieve missing key", func(a *biff.A) {
				resp := apiRequest("POST", "/files/squares.btr:retrieve").
					WithBodyJson(JSON{"comparison": "EQUAL", "key": key(42)}).Do()
				Save(resp, "Retrieve - not found", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				biff.AssertEqual(errorStatus(resp), "KEY_VALUE_NOT_FOUND")
			})

			a.Alternative("Retrieve last", func(a *biff.A) {
				resp := apiRequest("POST", "/files/squares.btr:retrieve").
					WithBodyJson(JSON{"last": true, "limit": 3}).Do()
				Save(resp, "Retrieve - last records backward", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"records": []JSON{
						{"position": 10, "data": square(9)},
						{"position": 9, "data": square(8)},
						{"position": 8, "data": square(7)},
					},
					"status": "NO_ERROR",
				})
			})

			a.Alternative("Retrieve keys", func(a *biff.A) {
				resp := apiRequest("POST", "/files/squares.btr:retrieve").
					WithBodyJson(JSON{"comparison": "GREATER_THAN", "key": key(7), "keys_only": true, "limit": 5}).Do()
				Save(resp, "Retrieve - keys only", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"records": []JSON{
						{"position": 9, "data": key(8)},
						{"position": 10, "data": key(9)},
					},
					"status": "END_OF_FILE",
				})
			})

			a.Alternative("Scan", func(a *biff.A) {
				resp := apiRequest("POST", "/files/squares.btr:scan").
					WithBodyJson(JSON{
						"attributes": JSON{
							"filters": []JSON{
								{
									"offset":     0,
									"length":     1,
									"data_type":  "UNSIGNED_BINARY",
									"comparison": "GREATER_THAN_OR_EQUAL",
									"constant":   key(5),
									"connector":  "LAST",
								},
							},
							"maximum_record_count": 3,
						},
					}).Do()
				Save(resp, "Scan", `
					Bulk retrieve from the first record of the index with a
					filter list.
				`)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"records": []JSON{
						{"position": 6, "data": square(5)},
						{"position": 7, "data": square(6)},
						{"position": 8, "data": square(7)},
					},
					"status": "NO_ERROR",
				})
			})

			a.Alternative("Scan invalid filter", func(a *biff.A) {
				resp := apiRequest("POST", "/files/squares.btr:scan").
					WithBodyJson(JSON{
						"attributes": JSON{
							"filters": []JSON{
								{"offset": 0, "length": 1, "data_type": "UNSIGNED_BINARY", "comparison": "EQUAL", "constant": key(5), "connector": "AND"},
							},
							"maximum_record_count": 3,
						},
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Percentage", func(a *biff.A) {
				resp := apiRequest("POST", "/files/squares.btr:percentage").
					WithBodyJson(JSON{"index": 0, "key": key(0)}).Do()
				Save(resp, "Percentage", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{"percentage": 0})
			})

			a.Alternative("Create and drop index", func(a *biff.A) {
				resp := apiRequest("POST", "/files/squares.btr:createIndex").
					WithBodyJson(JSON{
						"duplicate_mode": "ALLOWED_NONREPEATING",
						"segments": []JSON{
							{"offset": 1, "length": 2, "data_type": "UNSIGNED_BINARY", "descending": true},
						},
					}).Do()
				Save(resp, "Create index", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				biff.AssertEqualJson(resp.BodyJson(), JSON{"index": "INDEX_2"})

				resp = apiRequest("POST", "/files/squares.btr:retrieve").
					WithBodyJson(JSON{"index": "INDEX_2"}).Do()
				biff.AssertEqual(resp.BodyJson().(JSON)["records"].([]interface{})[0].(JSON)["data"], square(9))

				resp = apiRequest("POST", "/files/squares.btr:dropIndex").
					WithBodyJson(JSON{"index": 1}).Do()
				Save(resp, "Drop index", ``)
				biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

				resp = apiRequest("GET", "/files/squares.btr").Do()
				biff.AssertEqualJson(resp.BodyJson().(JSON)["index_count"], 1)
			})
		})
	})

	a.Alternative("List locks", func(a *biff.A) {
		resp := apiRequest("GET", "/locks").Do()
		Save(resp, "List locks", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusOK)
		biff.AssertEqualJson(resp.BodyJson(), []JSON{})

		resp = apiRequest("POST", "/locks:find").
			WithBodyJson(JSON{"filter": JSON{"file": "squares.btr"}}).Do()
		biff.AssertEqual(resp.StatusCode, http.StatusOK)
		biff.AssertEqual(strings.TrimSpace(resp.BodyString()), "")
	})

	a.Alternative("Malformed body", func(a *biff.A) {
		resp := apiRequest("POST", "/files").
			WithBodyString(`{"name": `).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		body, _ := json.Marshal(resp.BodyJson())
		biff.AssertTrue(strings.Contains(string(body), "Malformed JSON"))
	})
}
