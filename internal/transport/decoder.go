package transport

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/clbanning/mxj/v2"
)

// Payload is a decoded response body: a generic mapping with a "result"
// discriminator, plus helpers for the shapes the gateway uses.
type Payload struct {
	data      map[string]any
	noContent bool
}

// Decode turns a buffered response into a Payload. The format is detected
// from the Content-Type header, ignoring parameters after ";":
// application/xml and text/xml decode as XML, anything else (including a
// missing header) as JSON.
//
// An empty body decodes to a Payload whose NoContent reports true. That is
// not an error here; callers decide what an empty body means for their
// operation. A malformed body yields a DecodeError carrying the raw bytes.
func Decode(raw *RawResponse) (*Payload, error) {
	if len(raw.Body) == 0 {
		return &Payload{noContent: true}, nil
	}

	switch contentType(raw.Header.Get("Content-Type")) {
	case "application/xml", "text/xml":
		return decodeXML(raw.Body)
	default:
		return decodeJSON(raw.Body)
	}
}

func contentType(header string) string {
	if i := strings.Index(header, ";"); i >= 0 {
		header = header[:i]
	}
	return strings.ToLower(strings.TrimSpace(header))
}

func decodeJSON(body []byte) (*Payload, error) {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &DecodeError{Format: "json", Body: body, Err: err}
	}
	return &Payload{data: data}, nil
}

// decodeXML parses the body structurally: element names become keys, nested
// elements nested mappings, repeated siblings slices. The gateway wraps
// every document in a single root element whose children are the actual
// payload, so one level is unwrapped when present.
func decodeXML(body []byte) (*Payload, error) {
	m, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, &DecodeError{Format: "xml", Body: body, Err: err}
	}
	data := map[string]any(m)
	if len(data) == 1 {
		for _, v := range data {
			if inner, ok := v.(map[string]any); ok {
				data = inner
			}
		}
	}
	return &Payload{data: data}, nil
}

// NoContent reports whether the response body was empty. When true, no other
// accessor carries meaning; in particular callers must not assume an orders
// record is present.
func (p *Payload) NoContent() bool {
	return p.noContent
}

// Result returns the response discriminator, "success" or "error". Empty
// when absent.
func (p *Payload) Result() string {
	s, _ := p.data["result"].(string)
	return s
}

// Failure returns the gateway error object when one is present. XML decodes
// the code as a string and JSON as a number; both are normalized to int.
func (p *Payload) Failure() (code int, message string, ok bool) {
	obj, ok := p.data["error"].(map[string]any)
	if !ok {
		return 0, "", false
	}
	message, _ = obj["message"].(string)
	switch v := obj["code"].(type) {
	case float64:
		code = int(v)
	case string:
		code, _ = strconv.Atoi(v)
	}
	return code, message, true
}

// Order returns the single order record of a get/charge response.
func (p *Payload) Order() (map[string]any, bool) {
	rec, ok := p.container()["order"].(map[string]any)
	return rec, ok
}

// Orders returns the order records of a listing response. A missing or
// empty collection yields nil. XML collapses a one-element collection into a
// single mapping; that case comes back as a one-element slice.
func (p *Payload) Orders() []map[string]any {
	switch v := p.container()["order"].(type) {
	case []any:
		records := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if rec, ok := item.(map[string]any); ok {
				records = append(records, rec)
			}
		}
		return records
	case map[string]any:
		return []map[string]any{v}
	default:
		return nil
	}
}

func (p *Payload) container() map[string]any {
	c, _ := p.data["orders"].(map[string]any)
	return c
}
