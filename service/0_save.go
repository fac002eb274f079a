package service

import (
	"encoding/json"
	"os"
	"path"
	"strings"

	"github.com/fulldump/apitest"
	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/utils"
)

// ExamplesPathEnv names the directory where Save writes its documents.
// Nothing is written when it is empty.
const ExamplesPathEnv = "BTRIEVEDB_EXAMPLES_PATH"

// Save writes a markdown document describing one request/response pair
// of the acceptance scenarios.
func Save(response *apitest.Response, title, description string) {

	examples := os.Getenv(ExamplesPathEnv)
	if examples == "" {
		return
	}

	request := response.Request
	target := request.URL.Path
	if request.URL.RawQuery != "" {
		target += "?" + request.URL.RawQuery
	}
	requestBody := indent(response.BodyRequestString())

	doc := &strings.Builder{}
	doc.WriteString("# " + title + "\n")
	doc.WriteString(cropTabs(description) + "\n")

	// curl
	doc.WriteString("Curl example:\n\n```sh\ncurl")
	if request.Method != "GET" {
		doc.WriteString(" -X " + request.Method)
	}
	doc.WriteString(" \"https://example.com" + target + "\"")
	for _, k := range utils.GetKeys(request.Header) {
		for _, v := range request.Header[k] {
			doc.WriteString(" \\\n-H \"" + k + ": " + v + "\"")
		}
	}
	if requestBody != "" {
		doc.WriteString(" \\\n-d '" + requestBody + "'")
	}
	doc.WriteString("\n```\n\n\n")

	// raw exchange
	doc.WriteString("HTTP request/response example:\n\n```http\n")
	doc.WriteString(request.Method + " " + target + " " + request.Proto + "\n")
	doc.WriteString("Host: example.com\n")
	for _, k := range utils.GetKeys(request.Header) {
		for _, v := range request.Header[k] {
			doc.WriteString(k + ": " + v + "\n")
		}
	}
	doc.WriteString("\n" + requestBody + "\n\n")

	doc.WriteString(response.Proto + " " + response.Status + "\n")
	for _, k := range utils.GetKeys(response.Header) {
		if k == "Date" {
			doc.WriteString("Date: Sat, 17 Oct 2026 10:00:00 GMT\n")
			continue
		}
		for _, v := range response.Header[k] {
			doc.WriteString(k + ": " + v + "\n")
		}
	}
	doc.WriteString("\n" + indent(response.BodyString()) + "\n```\n\n\n")

	filename := strings.ReplaceAll(strings.ToLower(title), " ", "_") + ".md"
	p := path.Join(examples, path.Clean(filename))
	glog.V(1).Infof("saving example %s", p)
	if err := os.WriteFile(p, []byte(doc.String()), 0666); err != nil {
		glog.Warningf("saving example %s: %s", p, err)
	}
}

// indent pretty prints JSON bodies and leaves anything else untouched.
// Streams of JSON documents are indented one by one.
func indent(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}

	result := []string{}
	decoder := json.NewDecoder(strings.NewReader(body))
	for decoder.More() {
		var item json.RawMessage
		if err := decoder.Decode(&item); err != nil {
			return body
		}
		pretty, err := json.MarshalIndent(item, "", "    ")
		if err != nil {
			return body
		}
		result = append(result, string(pretty))
	}
	return strings.Join(result, "\n")
}

// cropTabs removes the indentation shared by every non blank line of a
// raw string literal written inside a test.
func cropTabs(d string) string {
	lines := strings.Split(d, "\n")

	shared := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tabs := len(line) - len(strings.TrimLeft(line, "\t"))
		if shared < 0 || tabs < shared {
			shared = tabs
		}
	}
	if shared <= 0 {
		return d
	}

	prefix := strings.Repeat("\t", shared)
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
