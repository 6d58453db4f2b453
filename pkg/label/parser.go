// parser.go — Request JSON parsing and example generation.
package label

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ExampleRequestJSON returns a sample request for packstencil init.
func ExampleRequestJSON() string {
	return `{
  "buyer": "nordmarkt",
  "source": "pedido_0412.pdf",
  "fields": {
    "product": "Tomate Cherry",
    "variety": "Rama",
    "category": "I",
    "packDate": "2024-03-05",
    "lot": "AB1234",
    "weight": "250 g",
    "boxWeight": "5 kg",
    "scanCode": "400638133393",
    "certA": "4063061591012",
    "certB": "CoC-4052"
  }
}`
}

// ParseRequests decodes either a single request object or an array of them.
func ParseRequests(data []byte) ([]Request, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("parse request JSON: empty input")
	}
	if data[0] == '[' {
		var reqs []Request
		if err := json.Unmarshal(data, &reqs); err != nil {
			return nil, fmt.Errorf("parse request JSON: %w", err)
		}
		return reqs, nil
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse request JSON: %w", err)
	}
	return []Request{req}, nil
}

// ParseRequestFile loads a request file written by hand or by packstencil init.
func ParseRequestFile(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return ParseRequests(data)
}
