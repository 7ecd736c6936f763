package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"solicitations/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names instead of go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// New solicitation request

type ClinReq struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Description  string  `json:"description"`
	PricingModel string  `json:"pricingModel" validate:"max=50"`
	PeriodId     *string `json:"periodId" validate:"omitempty,max=100"`
}

func (c ClinReq) toModel() models.Clin {
	return models.Clin{
		Name:         c.Name,
		Description:  c.Description,
		PricingModel: c.PricingModel,
		PeriodId:     c.PeriodId,
	}
}

type NewSolicitationReq struct {
	Number             string          `json:"number" validate:"required,max=100"`
	Title              string          `json:"title" validate:"required,max=500"`
	Agency             string          `json:"agency" validate:"required,max=200"`
	Description        string          `json:"description"`
	DueDate            string          `json:"dueDate" validate:"required"`
	QuestionCutoffDate *string         `json:"questionCutoffDate"`
	ProposalCutoffDate *string         `json:"proposalCutoffDate"`
	Status             string          `json:"status" validate:"max=50"`
	EvaluationPeriods  json.RawMessage `json:"evaluationPeriods"`
	Clins              []ClinReq       `json:"clins" validate:"omitempty,dive"`
}

func ParseNewSolicitationReq(data []byte) (models.Solicitation, error) {
	req := &NewSolicitationReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return models.Solicitation{}, err
	}

	if err = validate.Struct(req); err != nil {
		return models.Solicitation{}, describeValidation(err)
	}

	s := models.Solicitation{
		Number:      req.Number,
		Title:       req.Title,
		Agency:      req.Agency,
		Description: req.Description,
		Status:      req.Status,
		Clins:       make([]models.Clin, 0, len(req.Clins)),
	}

	if s.DueDate, err = parseDate("dueDate", req.DueDate); err != nil {
		return models.Solicitation{}, err
	}
	if s.QuestionCutoffDate, err = parseOptionalDate("questionCutoffDate", req.QuestionCutoffDate); err != nil {
		return models.Solicitation{}, err
	}
	if s.ProposalCutoffDate, err = parseOptionalDate("proposalCutoffDate", req.ProposalCutoffDate); err != nil {
		return models.Solicitation{}, err
	}

	if len(req.EvaluationPeriods) > 0 && !isNull(req.EvaluationPeriods) {
		periods, err := compactJSON(req.EvaluationPeriods)
		if err != nil {
			return models.Solicitation{}, err
		}
		s.EvaluationPeriods = &periods
	}

	for _, clin := range req.Clins {
		s.Clins = append(s.Clins, clin.toModel())
	}

	return s, nil
}

// Solicitation change request

// ParseSolicitationChangeReq keeps only the keys present in the payload.
// An explicit null clears nullable columns, a null clins list counts as absent.
func ParseSolicitationChangeReq(data []byte) (string, models.SolicitationUpdate, error) {
	update := models.SolicitationUpdate{Fields: map[string]any{}}
	vals := make(map[string]json.RawMessage)

	err := json.Unmarshal(data, &vals)
	if err != nil {
		return "", update, err
	}

	id, ok, err := checkRequestField(vals, "id", 100)
	if err != nil || !ok || len(strings.TrimSpace(id)) == 0 {
		return "", update, models.ErrMissingId
	}

	for _, f := range []struct {
		key, column string
		limit       int
	}{
		{"number", "number", 100},
		{"title", "title", 500},
		{"agency", "agency", 200},
		{"description", "description", 0},
		{"status", "status", 50},
	} {
		str, ok, err := checkRequestField(vals, f.key, f.limit)
		if err != nil {
			return id, update, err
		}
		if ok {
			update.Fields[f.column] = str
		}
	}

	for _, f := range []struct {
		key, column string
		nullable    bool
	}{
		{"dueDate", "due_date", false},
		{"questionCutoffDate", "question_cutoff_date", true},
		{"proposalCutoffDate", "proposal_cutoff_date", true},
	} {
		date, ok, err := checkDateField(vals, f.key, f.nullable)
		if err != nil {
			return id, update, err
		}
		if ok {
			update.Fields[f.column] = date
		}
	}

	if raw, ok := vals["evaluationPeriods"]; ok {
		if isNull(raw) {
			update.Fields["evaluation_periods"] = nil
		} else {
			periods, err := compactJSON(raw)
			if err != nil {
				return id, update, err
			}
			update.Fields["evaluation_periods"] = periods
		}
	}

	if raw, ok := vals["clins"]; ok && !isNull(raw) {
		var clins []ClinReq
		if err = json.Unmarshal(raw, &clins); err != nil {
			return id, update, fmt.Errorf("invalid type of 'clins' field: %w", err)
		}
		update.Clins = make([]models.Clin, 0, len(clins))
		for i, clin := range clins {
			if err = validate.Struct(clin); err != nil {
				return id, update, fmt.Errorf("clins[%d]: %w", i, describeValidation(err))
			}
			update.Clins = append(update.Clins, clin.toModel())
		}
		update.ReplaceClins = true
	}

	return id, update, nil
}

// New user request

type NewUserReq struct {
	Email               string   `json:"email" validate:"required,email,max=320"`
	Name                string   `json:"name" validate:"required,max=200"`
	Role                string   `json:"role" validate:"required,max=50"`
	CompanyName         *string  `json:"companyName" validate:"omitempty,max=200"`
	UeiNumber           *string  `json:"ueiNumber" validate:"omitempty,max=50"`
	SocioEconomicStatus []string `json:"socioEconomicStatus" validate:"omitempty,dive,required,max=100"`
}

func ParseNewUserReq(data []byte) (models.User, error) {
	req := &NewUserReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return models.User{}, err
	}
	req.Email = strings.TrimSpace(req.Email)

	if err = validate.Struct(req); err != nil {
		return models.User{}, describeValidation(err)
	}

	return models.User{
		Email:               req.Email,
		Name:                req.Name,
		Role:                req.Role,
		CompanyName:         req.CompanyName,
		UeiNumber:           req.UeiNumber,
		SocioEconomicStatus: uniqueTags(req.SocioEconomicStatus),
	}, nil
}

// Find user request

type FindUserReq struct {
	Email string `json:"email" validate:"required,max=320"`
}

func ParseFindUserReq(data []byte) (*FindUserReq, error) {
	req := &FindUserReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}
	req.Email = strings.TrimSpace(req.Email)

	if err = validate.Struct(req); err != nil {
		return nil, describeValidation(err)
	}
	return req, nil
}

// Service

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(fieldName, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("field '%s' is not a valid date: %q", fieldName, value)
}

func parseOptionalDate(fieldName string, value *string) (*time.Time, error) {
	if value == nil || len(*value) == 0 {
		return nil, nil
	}
	t, err := parseDate(fieldName, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func checkLengthLimit(str, fieldName string, limit int) error {
	if n := utf8.RuneCountInString(str); limit > 0 && n > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, n, limit)
	}
	return nil
}

func checkRequestField(vals map[string]json.RawMessage, key string, lengthLimit int) (string, bool, error) {
	raw, ok := vals[key]
	if !ok {
		return "", false, nil
	}
	if isNull(raw) {
		return "", false, fmt.Errorf("field '%s' cannot be null", key)
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return "", false, fmt.Errorf("invalid type of '%s' field", key)
	}

	if err := checkLengthLimit(str, key, lengthLimit); err != nil {
		return "", false, err
	}

	return str, true, nil
}

// checkDateField returns a time.Time, or an untyped nil for an allowed null.
func checkDateField(vals map[string]json.RawMessage, key string, nullable bool) (any, bool, error) {
	raw, ok := vals[key]
	if !ok {
		return nil, false, nil
	}
	if isNull(raw) {
		if !nullable {
			return nil, false, fmt.Errorf("field '%s' cannot be null", key)
		}
		return nil, true, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return nil, false, fmt.Errorf("invalid type of '%s' field", key)
	}

	t, err := parseDate(key, str)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func compactJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("invalid json: %w", err)
	}
	return buf.String(), nil
}

func uniqueTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Namespace()
		if _, rest, ok := strings.Cut(name, "."); ok {
			name = rest
		}
		parts = append(parts, fmt.Sprintf("field '%s' failed '%s' check", name, fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}
