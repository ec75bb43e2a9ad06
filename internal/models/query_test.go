package models

import (
	"errors"
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name       string
		query      *SearchQuery
		wantErr    error
		wantLimit  int
		wantOffset int
	}{
		{"empty query", &SearchQuery{Query: ""}, ErrEmptyQuery, 0, 0},
		{"valid query", &SearchQuery{Query: "hello", Limit: 5}, nil, 5, 0},
		{"sets default limit", &SearchQuery{Query: "x", Limit: 0}, nil, DefaultLimit, 0},
		{"caps limit at max", &SearchQuery{Query: "x", Limit: 200}, nil, MaxLimit, 0},
		{"clamps negative offset", &SearchQuery{Query: "x", Offset: -3}, nil, DefaultLimit, 0},
		{"keeps offset", &SearchQuery{Query: "x", Offset: 7}, nil, DefaultLimit, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.query.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.query.Limit, tt.wantLimit)
			}
			if tt.query.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", tt.query.Offset, tt.wantOffset)
			}
		})
	}
}

func TestSearchQuery_ValidateWithLimits(t *testing.T) {
	q := &SearchQuery{Query: "x"}
	if err := q.ValidateWithLimits(3, 5); err != nil {
		t.Fatal(err)
	}
	if q.Limit != 3 {
		t.Errorf("Limit = %d, want 3", q.Limit)
	}

	q = &SearchQuery{Query: "x", Limit: 50}
	if err := q.ValidateWithLimits(3, 5); err != nil {
		t.Fatal(err)
	}
	if q.Limit != 5 {
		t.Errorf("Limit = %d, want 5", q.Limit)
	}
}
