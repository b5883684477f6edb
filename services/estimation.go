package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"
)

// Lifecycle states reported by the estimation API.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
)

// Amount is a numeric field that tolerates numeric strings on the wire.
type Amount float64

// UnmarshalJSON accepts a JSON number, a numeric string, or null (zero).
func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*a = 0
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		*a = 0
		return nil
	}
	if _, ok := v.(bool); ok {
		return fmt.Errorf("not a number: %s", raw)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return fmt.Errorf("not a number: %s", raw)
	}
	*a = Amount(f)
	return nil
}

// OptionalAmount is a precomputed value that only counts when the wire value is a number.
type OptionalAmount struct {
	Value float64
	Valid bool
}

// Some returns a present OptionalAmount.
func Some(v float64) OptionalAmount {
	return OptionalAmount{Value: v, Valid: true}
}

func (o *OptionalAmount) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f, ok := v.(float64)
	*o = OptionalAmount{Value: f, Valid: ok}
	return nil
}

func (o OptionalAmount) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// LineDetail is the smallest priced unit of an estimation.
type LineDetail struct {
	ID          string         `json:"id"`
	WorkItemID  string         `json:"work_item_id,omitempty"`
	Code        string         `json:"code"`
	Description string         `json:"description"`
	Volume      Amount         `json:"volume"`
	Unit        string         `json:"unit"`
	UnitPrice   Amount         `json:"unit_price"`
	TotalPrice  OptionalAmount `json:"total_price"`
}

func (d LineDetail) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
	)
}

// WorkSection groups line details under a titled work item.
type WorkSection struct {
	ID           string       `json:"id"`
	EstimationID string       `json:"estimation_id,omitempty"`
	Title        string       `json:"title"`
	Details      []LineDetail `json:"details"`
}

func (s WorkSection) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required),
		validation.Field(&s.Details),
	)
}

type CustomField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// EstimationDocument is a RAB: the project-level budget with its work items.
type EstimationDocument struct {
	ID           string        `json:"id"`
	ProjectName  string        `json:"project_name"`
	ProjectOwner string        `json:"project_owner"`
	TaxRate      Amount        `json:"tax_rate"`
	Notes        string        `json:"notes"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	AuthorID     string        `json:"author_id"`
	WorkItems    []WorkSection `json:"work_items"`
	CustomFields []CustomField `json:"custom_fields"`
}

func (d EstimationDocument) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.TaxRate, validation.Min(0.0)),
		validation.Field(&d.WorkItems),
	)
}

// DecodeEstimation reads a `{"data": {...}}` envelope and validates its shape.
func DecodeEstimation(r io.Reader) (EstimationDocument, error) {
	var env struct {
		Data *EstimationDocument `json:"data"`
	}
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return EstimationDocument{}, fmt.Errorf("decode estimation: %w", err)
	}
	if env.Data == nil {
		return EstimationDocument{}, fmt.Errorf("decode estimation: missing data")
	}
	if err := env.Data.Validate(); err != nil {
		return EstimationDocument{}, fmt.Errorf("invalid estimation: %w", err)
	}
	return *env.Data, nil
}

// DecodeEstimationList reads a `{"data": [...]}` envelope.
func DecodeEstimationList(r io.Reader) ([]EstimationDocument, error) {
	var env struct {
		Data []EstimationDocument `json:"data"`
	}
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode estimation list: %w", err)
	}
	for i, doc := range env.Data {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid estimation at %d: %w", i, err)
		}
	}
	return env.Data, nil
}
