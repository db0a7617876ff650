package invoice

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONRenderer renders invoices as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(_ context.Context, s *Summary) (*Document, error) {
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode invoice: %w", err)
	}
	name := s.Number
	if name == "" {
		name = s.SaleID.String()
	}
	return &Document{
		Filename:    "invoice_" + name + ".json",
		ContentType: "application/json",
		Body:        body,
	}, nil
}
