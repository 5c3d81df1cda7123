package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
)

// ============================================================
// Billing charges — implements port.BillingStore
// ============================================================

// supabaseCharge maps the charges table columns.
type supabaseCharge struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	PixKey        string  `json:"pix_key"`
	PixKeyType    string  `json:"pix_key_type"`
	EMVCode       string  `json:"emv_code"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	PaidAt        *string `json:"paid_at"`
}

func (s *supabaseCharge) toDomain() domain.Charge {
	created, _ := time.Parse(time.RFC3339, s.CreatedAt)
	c := domain.Charge{
		ID:            s.ID,
		UserID:        s.UserID,
		TransactionID: s.TransactionID,
		Amount:        s.Amount,
		Description:   s.Description,
		PixKey:        s.PixKey,
		PixKeyType:    s.PixKeyType,
		EMVCode:       s.EMVCode,
		Status:        s.Status,
		CreatedAt:     created,
	}
	if s.PaidAt != nil {
		if paid, err := time.Parse(time.RFC3339, *s.PaidAt); err == nil {
			c.PaidAt = &paid
		}
	}
	return c
}

// CreateCharge inserts a charge row and returns it with its id.
func (c *Client) CreateCharge(ctx context.Context, charge *domain.Charge) (*domain.Charge, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCharge")
	defer span.End()

	row := map[string]any{
		"user_id":        charge.UserID,
		"transaction_id": charge.TransactionID,
		"amount":         charge.Amount,
		"description":    charge.Description,
		"pix_key":        charge.PixKey,
		"pix_key_type":   charge.PixKeyType,
		"emv_code":       charge.EMVCode,
		"status":         charge.Status,
	}

	body, err := c.doPost(ctx, "charges", row)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/charges", Err: err}
	}

	var rows []supabaseCharge
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode charge: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no result from charges insert")
	}
	created := rows[0].toDomain()
	return &created, nil
}

// GetCharge fetches one charge by id.
func (c *Client) GetCharge(ctx context.Context, id string) (*domain.Charge, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCharge")
	defer span.End()

	path := fmt.Sprintf("charges?id=eq.%s&limit=1", url.QueryEscape(id))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/charges", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "charge", ID: id}
	}

	var rows []supabaseCharge
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode charge: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "charge", ID: id}
	}
	charge := rows[0].toDomain()
	return &charge, nil
}

// ListCharges returns one page of a user's charges plus the total.
func (c *Client) ListCharges(ctx context.Context, userID string, page, pageSize int) ([]domain.Charge, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCharges")
	defer span.End()

	base := fmt.Sprintf("charges?user_id=eq.%s", url.QueryEscape(userID))

	total, err := c.count(ctx, base+"&select=id")
	if err != nil {
		return nil, 0, &domain.ErrExternalService{Service: "supabase/charges", Err: err}
	}

	offset := (page - 1) * pageSize
	path := fmt.Sprintf("%s&order=created_at.desc&limit=%d&offset=%d", base, pageSize, offset)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, 0, &domain.ErrExternalService{Service: "supabase/charges", Err: err}
	}

	var rows []supabaseCharge
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, 0, fmt.Errorf("decode charges: %w", err)
		}
	}

	charges := make([]domain.Charge, 0, len(rows))
	for _, r := range rows {
		charges = append(charges, r.toDomain())
	}
	return charges, int(total), nil
}

// CountPendingCharges counts charges still awaiting payment.
func (c *Client) CountPendingCharges(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountPendingCharges")
	defer span.End()

	return c.count(ctx, "charges?select=id&status=eq.pending")
}

// SumPaidCharges totals the amount of all paid charges.
func (c *Client) SumPaidCharges(ctx context.Context) (float64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SumPaidCharges")
	defer span.End()

	body, err := c.doRequest(ctx, http.MethodGet, "charges?select=amount&status=eq.paid&limit=10000")
	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/charges", Err: err}
	}

	var rows []struct {
		Amount float64 `json:"amount"`
	}
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return 0, fmt.Errorf("decode charges: %w", err)
		}
	}

	var sum float64
	for _, r := range rows {
		sum += r.Amount
	}
	return sum, nil
}

// ChargesByDay buckets recent charges per day for the platform overview.
func (c *Client) ChargesByDay(ctx context.Context, days int) ([]domain.ChargeDay, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ChargesByDay")
	defer span.End()

	since := time.Now().UTC().AddDate(0, 0, -days)
	path := fmt.Sprintf("charges?select=amount,created_at&created_at=gte.%s&limit=10000",
		url.QueryEscape(since.Format(time.RFC3339)))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/charges", Err: err}
	}

	var rows []struct {
		Amount    float64 `json:"amount"`
		CreatedAt string  `json:"created_at"`
	}
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode charges: %w", err)
		}
	}

	byDay := map[string]*domain.ChargeDay{}
	for _, r := range rows {
		created, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			continue
		}
		day := created.UTC().Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &domain.ChargeDay{Day: day}
			byDay[day] = entry
		}
		entry.Count++
		entry.Amount += r.Amount
	}

	result := []domain.ChargeDay{}
	for i := days; i >= 0; i-- {
		day := time.Now().UTC().AddDate(0, 0, -i).Format("2006-01-02")
		if entry, ok := byDay[day]; ok {
			result = append(result, *entry)
		} else {
			result = append(result, domain.ChargeDay{Day: day})
		}
	}
	return result, nil
}
