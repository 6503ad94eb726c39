package platform

import (
	"encoding/json"
	"strconv"
)

// LinkBux and Rewardoo run the same white-label "medium" API family: the
// envelope carries a status block at either the top level or nested, and
// records live under data.list or data.transactions.

type mediumEnvelope struct {
	Code   *flexInt `json:"code"`
	Msg    string   `json:"msg"`
	Status *struct {
		Code flexInt `json:"code"`
		Msg  string  `json:"msg"`
	} `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		List         []json.RawMessage `json:"list"`
		Transactions []json.RawMessage `json:"transactions"`
		TotalTrans   flexInt           `json:"total_trans"`
		TotalPage    flexInt           `json:"total_page"`
		TotalItems   flexInt           `json:"total_items"`
	} `json:"data"`
}

func (e *mediumEnvelope) success() bool {
	if e.Code != nil && *e.Code == 0 {
		return true
	}
	return e.Status != nil && e.Status.Code == 0
}

func (e *mediumEnvelope) records() []json.RawMessage {
	if e.Data == nil {
		return nil
	}
	if len(e.Data.List) > 0 {
		return e.Data.List
	}
	return e.Data.Transactions
}

func (e *mediumEnvelope) errParts() (code, msg string) {
	if e.Code != nil {
		code = strconv.Itoa(int(*e.Code))
	} else if e.Status != nil {
		code = strconv.Itoa(int(e.Status.Code))
	}
	for _, m := range []string{e.Msg, e.Message} {
		if m != "" {
			return code, m
		}
	}
	if e.Status != nil && e.Status.Msg != "" {
		return code, e.Status.Msg
	}
	return code, "data fetch failed"
}

type mediumRecord struct {
	OrderID        flexString `json:"order_id"`
	LinkbuxID      flexString `json:"linkbux_id"`
	RewardooID     flexString `json:"rewardoo_id"`
	MerchantID     flexString `json:"mid"`
	MerchantName   string     `json:"merchant_name"`
	SaleAmount     flexFloat  `json:"sale_amount"`
	SaleComm       flexFloat  `json:"sale_comm"`
	Status         string     `json:"status"`
	OrderTime      flexString `json:"order_time"`
	ValidationDate flexString `json:"validation_date"`
}

// normalizeMedium maps one medium-family record onto a line item.
// fallbackID supplies the partner-specific id field used when order_id is
// absent.
func normalizeMedium(raw json.RawMessage, rec mediumRecord, fallbackID string) LineItem {
	orderID := rec.OrderID.String()
	if orderID == "" {
		orderID = fallbackID
	}

	date := dateOnly(rec.OrderTime)
	if date == "" {
		// Some records only carry the validation date; the literal string
		// "null" shows up in the wild and must be ignored.
		if v := rec.ValidationDate.String(); v != "" && v != "null" {
			date = dateOnly(rec.ValidationDate)
		}
	}

	return LineItem{
		OrderID:      orderID,
		MerchantID:   rec.MerchantID.String(),
		MerchantName: rec.MerchantName,
		Amount:       money(rec.SaleAmount),
		Commission:   money(rec.SaleComm),
		Status:       mapMediumStatus(rec.Status),
		OrderDate:    date,
		Raw:          raw,
	}
}

func mapMediumStatus(s string) Status {
	switch s {
	case "Approved":
		return StatusApproved
	case "Rejected":
		return StatusRejected
	default:
		return StatusPending
	}
}
