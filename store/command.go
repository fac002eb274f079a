package store

import (
	"fmt"
	"io"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"

	"github.com/fulldump/btrievedb/btrieve"
)

type Command struct {
	Name      string         `json:"name"`
	Uuid      string         `json:"uuid"`
	Timestamp int64          `json:"timestamp"`
	Codec     Codec          `json:"codec,omitempty"`
	Payload   jsontext.Value `json:"payload"`
}

const (
	commandCreate    = "create"
	commandInsert    = "insert"
	commandUpdate    = "update"
	commandDelete    = "delete"
	commandIndex     = "index"
	commandDropIndex = "drop_index"
	commandOwner     = "owner"
)

type createPayload struct {
	Attributes btrieve.FileAttributes    `json:"attributes"`
	Indexes    []btrieve.IndexAttributes `json:"indexes"`
}

// rowPayload carries the stored (record-compressed) bytes of a row. Seq is
// the insertion sequence, Seqs the per index sequences that differ from it.
type rowPayload struct {
	Position int64                    `json:"position"`
	Data     []byte                   `json:"data"`
	Seq      uint64                   `json:"seq,omitzero"`
	Seqs     map[btrieve.Index]uint64 `json:"seqs,omitempty"`
}

type dropIndexPayload struct {
	Index btrieve.Index `json:"index"`
}

type ownerPayload struct {
	Mode btrieve.OwnerMode `json:"mode"`
	Hash string            `json:"hash,omitempty"`
}

func newCommand(name string, codec Codec, payload interface{}) (*Command, error) {

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json encode payload: %w", err)
	}

	if codec != CodecNone {
		compressed, err := codec.Encode(raw)
		if err != nil {
			return nil, fmt.Errorf("compress payload: %w", err)
		}
		raw, err = json.Marshal(compressed)
		if err != nil {
			return nil, fmt.Errorf("json encode compressed payload: %w", err)
		}
	}

	return &Command{
		Name:      name,
		Uuid:      uuid.New().String(),
		Timestamp: time.Now().UnixNano(),
		Codec:     codec,
		Payload:   jsontext.Value(raw),
	}, nil
}

// decode unmarshals the payload into v, decompressing it first if needed.
func (c *Command) decode(v interface{}) error {

	raw := []byte(c.Payload)
	if c.Codec != CodecNone {
		compressed := []byte{}
		err := json.Unmarshal(raw, &compressed)
		if err != nil {
			return fmt.Errorf("json decode compressed payload: %w", err)
		}
		raw, err = c.Codec.Decode(compressed)
		if err != nil {
			return fmt.Errorf("decompress payload: %w", err)
		}
	}

	err := json.Unmarshal(raw, v)
	if err != nil {
		return fmt.Errorf("json decode payload: %w", err)
	}
	return nil
}

// writeCommand appends one command line to w.
func writeCommand(w io.Writer, name string, codec Codec, payload interface{}) error {

	command, err := newCommand(name, codec, payload)
	if err != nil {
		return fmt.Errorf("%w: %w", err, btrieve.StatusInternalError)
	}

	line, err := json.Marshal(command)
	if err != nil {
		return fmt.Errorf("json encode command: %w: %w", err, btrieve.StatusInternalError)
	}
	_, err = w.Write(append(line, '\n'))
	if err != nil {
		return fmt.Errorf("write command: %w: %w", err, btrieve.StatusIOError)
	}

	return nil
}
