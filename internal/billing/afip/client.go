// Package afip implements the billing.Service contract against AFIP's
// WSFEv1 SOAP web service. Credential acquisition (WSAA) is outside this
// package; the client receives an already-issued token and sign.
package afip

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/afip-einvoicing/internal/billing"
	"github.com/afip-einvoicing/internal/config"
	"github.com/afip-einvoicing/internal/domain/invoice"
)

const soapEnvelope = `<?xml version="1.0" encoding="utf-8"?>` +
	`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">` +
	`<soap:Body>%s</soap:Body></soap:Envelope>`

const serviceNamespace = "http://ar.gov.afip.dif.FEV1/"

// Client talks to the WSFEv1 endpoint. The HTTP client's timeout bounds
// every billing call; a timeout surfaces as a submission failure.
type Client struct {
	httpClient *http.Client
	endpoint   string
	auth       authData
	logger     *slog.Logger
}

var _ billing.Service = (*Client)(nil)

// NewClient builds a WSFEv1 client from configuration.
func NewClient(logger *slog.Logger, cfg *config.AfipConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		auth: authData{
			Token: cfg.Token,
			Sign:  cfg.Sign,
			Cuit:  cfg.CUIT,
		},
		logger: logger,
	}
}

// CreateInvoice requests authorization for the next voucher number of the
// invoice's point of sale and voucher type.
func (c *Client) CreateInvoice(ctx context.Context, inv *invoice.Invoice) (*billing.Authorization, error) {
	lastNumber, err := c.lastAuthorizedVoucher(ctx, inv.PointOfSale, inv.VoucherType)
	if err != nil {
		return nil, err
	}
	voucherNumber := lastNumber + 1

	req := caeRequest{Xmlns: serviceNamespace, Auth: c.auth}
	req.FeCAEReq.FeCabReq.CantReg = 1
	req.FeCAEReq.FeCabReq.PtoVta = inv.PointOfSale
	req.FeCAEReq.FeCabReq.CbteTipo = inv.VoucherType
	req.FeCAEReq.FeDetReq.Details = []voucherDetail{buildVoucherDetail(inv, voucherNumber)}

	var resp caeResponse
	if err := c.call(ctx, "FECAESolicitar", req, &resp); err != nil {
		return nil, err
	}
	if err := firstError(resp.Result.Errors.Items); err != nil {
		return nil, err
	}
	if len(resp.Result.FeDetResp.Details) == 0 {
		return nil, fmt.Errorf("authority returned no voucher detail")
	}

	detail := resp.Result.FeDetResp.Details[0]
	if detail.Resultado != "A" {
		if err := firstError(detail.Observations.Items); err != nil {
			return nil, err
		}
		return nil, billing.ErrSubmissionRejected{Message: fmt.Sprintf("result %q", detail.Resultado)}
	}

	expiry, err := invoice.DateFromCompact(detail.CAEFchVto)
	if err != nil {
		return nil, fmt.Errorf("authority returned unparseable CAE expiry %q: %w", detail.CAEFchVto, err)
	}

	return &billing.Authorization{
		VoucherNumber: detail.CbteDesde,
		CAE:           detail.CAE,
		CAEExpiry:     expiry,
	}, nil
}

// GetVoucherInfo looks up an already-issued voucher at the authority.
func (c *Client) GetVoucherInfo(ctx context.Context, pointOfSale, voucherType int, voucherNumber int64) (*billing.VoucherInfo, error) {
	req := voucherQueryRequest{Xmlns: serviceNamespace, Auth: c.auth}
	req.FeCompConsReq.PtoVta = pointOfSale
	req.FeCompConsReq.CbteTipo = voucherType
	req.FeCompConsReq.CbteNro = voucherNumber

	var resp voucherQueryResponse
	if err := c.call(ctx, "FECompConsultar", req, &resp); err != nil {
		return nil, err
	}
	if err := firstError(resp.Result.Errors.Items); err != nil {
		return nil, err
	}

	result := resp.Result.ResultGet
	info := &billing.VoucherInfo{
		VoucherNumber: result.CbteDesde,
		CAE:           result.CAE,
		Result:        result.Resultado,
	}
	if result.CAEFchVto != "" {
		expiry, err := invoice.DateFromCompact(result.CAEFchVto)
		if err != nil {
			return nil, fmt.Errorf("authority returned unparseable CAE expiry %q: %w", result.CAEFchVto, err)
		}
		info.CAEExpiry = expiry
	}

	return info, nil
}

func (c *Client) lastAuthorizedVoucher(ctx context.Context, pointOfSale, voucherType int) (int64, error) {
	req := lastVoucherRequest{
		Xmlns:    serviceNamespace,
		Auth:     c.auth,
		PtoVta:   pointOfSale,
		CbteTipo: voucherType,
	}

	var resp lastVoucherResponse
	if err := c.call(ctx, "FECompUltimoAutorizado", req, &resp); err != nil {
		return 0, err
	}
	if err := firstError(resp.Result.Errors.Items); err != nil {
		return 0, err
	}

	return resp.Result.CbteNro, nil
}

// call performs one SOAP request/response round trip.
func (c *Client) call(ctx context.Context, action string, reqBody, respBody interface{}) error {
	payload, err := xml.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", action, err)
	}
	envelope := fmt.Sprintf(soapEnvelope, payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBufferString(envelope))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", action, err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", serviceNamespace+action)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("billing call %s failed: %w", action, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", action, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		c.logger.Error("Billing endpoint returned non-OK status",
			"action", action,
			"status", httpResp.StatusCode,
		)
		return fmt.Errorf("billing call %s returned status %d", action, httpResp.StatusCode)
	}

	if err := unmarshalSoapBody(body, respBody); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", action, err)
	}

	return nil
}

// unmarshalSoapBody decodes the operation response element inside the SOAP
// envelope, skipping over the envelope and body wrappers.
func unmarshalSoapBody(envelope []byte, out interface{}) error {
	decoder := xml.NewDecoder(bytes.NewReader(envelope))
	depth := 0
	for {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		depth++
		// Envelope is depth 1, Body depth 2; the operation response
		// element sits at depth 3.
		if depth == 3 {
			return decoder.DecodeElement(out, &start)
		}
	}
}

func firstError(errs []apiError) error {
	if len(errs) == 0 {
		return nil
	}
	return billing.ErrSubmissionRejected{Code: errs[0].Code, Message: errs[0].Message}
}
