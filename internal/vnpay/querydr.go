package vnpay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// QueryClient calls the gateway's merchant web API to look up the
// authoritative state of a transaction. Used for manual reconciliation
// when an IPN was missed or is disputed; the callback flow never
// depends on it.
type QueryClient struct {
	tmnCode string
	signer  *Signer
	client  *resty.Client
}

// QueryRequest identifies the transaction to look up.
type QueryRequest struct {
	TxnRef          string
	TransactionDate string // yyyyMMddHHmmss, as issued with the original payment
	OrderInfo       string
	IPAddr          string
}

// QueryResult is the gateway's answer to a querydr call.
type QueryResult struct {
	ResponseCode      string `json:"vnp_ResponseCode"`
	Message           string `json:"vnp_Message"`
	TxnRef            string `json:"vnp_TxnRef"`
	Amount            string `json:"vnp_Amount"`
	TransactionNo     string `json:"vnp_TransactionNo"`
	TransactionStatus string `json:"vnp_TransactionStatus"`
}

// NewQueryClient builds a client against apiURL (the merchant_webapi
// transaction endpoint).
func NewQueryClient(apiURL, tmnCode string, signer *Signer) *QueryClient {
	return &QueryClient{
		tmnCode: tmnCode,
		signer:  signer,
		client: resty.New().
			SetBaseURL(apiURL).
			SetTimeout(30 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(1 * time.Second),
	}
}

// Query asks the gateway for the current state of one transaction.
// The request carries its own secure hash over the pipe-joined request
// fields, which is the scheme the merchant API uses (distinct from the
// callback canonicalization).
func (q *QueryClient) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	requestID := uuid.NewString()
	createDate := time.Now().Format("20060102150405")

	hashData := strings.Join([]string{
		requestID, "2.1.0", "querydr", q.tmnCode, req.TxnRef,
		req.TransactionDate, createDate, req.IPAddr, req.OrderInfo,
	}, "|")

	body := map[string]string{
		"vnp_RequestId":       requestID,
		"vnp_Version":         "2.1.0",
		"vnp_Command":         "querydr",
		"vnp_TmnCode":         q.tmnCode,
		"vnp_TxnRef":          req.TxnRef,
		"vnp_OrderInfo":       req.OrderInfo,
		"vnp_TransactionDate": req.TransactionDate,
		"vnp_CreateDate":      createDate,
		"vnp_IpAddr":          req.IPAddr,
		"vnp_SecureHash":      q.signer.Sign(hashData),
	}

	resp, err := q.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("")
	if err != nil {
		return nil, fmt.Errorf("vnpay querydr request failed: %w", err)
	}

	var result QueryResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("vnpay querydr parse error: %w", err)
	}
	return &result, nil
}
