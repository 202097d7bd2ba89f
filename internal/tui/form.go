package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/veldrane/dealdeck/internal/models"
	svcboard "github.com/veldrane/dealdeck/internal/services/board"
)

// dealFormValues backs the huh form for creating and editing deals. The form
// writes through pointers into this struct; submit converts it to a backend
// request.
type dealFormValues struct {
	Name        string
	Amount      string
	Probability string
	CloseDate   string
	CompanyID   string
	ContactID   string
	Status      string
	Notes       string
	Confirm     bool
}

const formDateLayout = "2006-01-02"

// newDealFormValues pre-fills the form from an existing deal, or returns
// blank values for a create.
func newDealFormValues(d *models.Deal) *dealFormValues {
	v := &dealFormValues{Status: string(models.DealOpen)}
	if d == nil {
		return v
	}
	v.Name = d.Name
	v.Amount = formatAmountInput(d.Amount)
	v.Probability = strconv.Itoa(d.Probability)
	if !d.CloseDate.IsZero() {
		v.CloseDate = d.CloseDate.Format(formDateLayout)
	}
	v.CompanyID = d.CompanyID
	v.ContactID = d.ContactID
	v.Status = string(d.Status)
	v.Notes = d.Notes
	return v
}

// newDealForm builds the create/edit form. Companies and contacts come from
// the reference data loaded at startup; editing exposes the lifecycle status
// select, creation does not (new deals are always open).
func newDealForm(v *dealFormValues, editing bool, companies []models.Company, contacts []models.Contact) *huh.Form {
	var fields []huh.Field

	fields = append(fields,
		huh.NewInput().
			Key("name").
			Title("Deal name").
			Placeholder("Enter deal name...").
			Value(&v.Name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name cannot be empty")
				}
				return nil
			}),
		huh.NewInput().
			Key("amount").
			Title("Amount").
			Placeholder("e.g. 1200.00").
			Value(&v.Amount).
			Validate(validateAmount),
		huh.NewInput().
			Key("probability").
			Title("Probability (0-100)").
			Value(&v.Probability).
			Validate(validateProbability),
		huh.NewInput().
			Key("close_date").
			Title("Close date (YYYY-MM-DD)").
			Value(&v.CloseDate).
			Validate(validateDate),
	)

	companyOptions := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, c := range companies {
		companyOptions = append(companyOptions, huh.NewOption(c.Name, c.ID))
	}
	contactOptions := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, c := range contacts {
		contactOptions = append(contactOptions, huh.NewOption(c.FullName(), c.ID))
	}
	fields = append(fields,
		huh.NewSelect[string]().
			Key("company").
			Title("Company").
			Options(companyOptions...).
			Value(&v.CompanyID),
		huh.NewSelect[string]().
			Key("contact").
			Title("Contact").
			Options(contactOptions...).
			Value(&v.ContactID),
	)

	if editing {
		fields = append(fields,
			huh.NewSelect[string]().
				Key("status").
				Title("Status").
				Options(
					huh.NewOption("open", string(models.DealOpen)),
					huh.NewOption("won", string(models.DealWon)),
					huh.NewOption("lost", string(models.DealLost)),
				).
				Value(&v.Status),
		)
	}

	fields = append(fields,
		huh.NewText().
			Key("notes").
			Title("Notes").
			Placeholder("Markdown notes...").
			CharLimit(5000).
			Lines(4).
			Value(&v.Notes),
		huh.NewConfirm().
			Key("confirm").
			Title("Save this deal?").
			Affirmative("Save").
			Negative("Discard").
			Value(&v.Confirm),
	)

	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(false)
}

// toCreateRequest converts submitted values into a create request targeting
// the given stage.
func (v *dealFormValues) toCreateRequest(stageID string) svcboard.CreateDealRequest {
	return svcboard.CreateDealRequest{
		Name:        strings.TrimSpace(v.Name),
		Amount:      parseAmount(v.Amount),
		StageID:     stageID,
		CompanyID:   v.CompanyID,
		ContactID:   v.ContactID,
		CloseDate:   parseDate(v.CloseDate),
		Probability: parseProbability(v.Probability),
		Notes:       v.Notes,
	}
}

// toUpdateRequest converts submitted values into a full-field edit of an
// existing deal. Stage is deliberately absent: reassignment always flows
// through the reconciler.
func (v *dealFormValues) toUpdateRequest(dealID string) svcboard.UpdateDealRequest {
	name := strings.TrimSpace(v.Name)
	amount := parseAmount(v.Amount)
	prob := parseProbability(v.Probability)
	closeDate := parseDate(v.CloseDate)
	status := models.DealStatus(v.Status)
	notes := v.Notes
	companyID := v.CompanyID
	contactID := v.ContactID
	return svcboard.UpdateDealRequest{
		DealID:      dealID,
		Name:        &name,
		Amount:      &amount,
		CompanyID:   &companyID,
		ContactID:   &contactID,
		CloseDate:   &closeDate,
		Probability: &prob,
		Status:      &status,
		Notes:       &notes,
	}
}

func validateAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("amount must be a number")
	}
	return nil
}

func validateProbability(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 100 {
		return fmt.Errorf("probability must be 0-100")
	}
	return nil
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(formDateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	return nil
}

// parseAmount converts a decimal string into cents. Invalid input was
// rejected by validation; defensively treated as zero here.
func parseAmount(s string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int64(f*100 + 0.5)
}

func parseProbability(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseDate(s string) time.Time {
	t, err := time.Parse(formDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// formatAmountInput renders cents as a decimal string for editing.
func formatAmountInput(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

// formatAmount renders cents for display, with a thousands separator.
func formatAmount(cents int64) string {
	whole := cents / 100
	s := strconv.FormatInt(whole, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String()
	if neg {
		out = "-" + out
	}
	return out
}
