package afip

import (
	"encoding/xml"

	"github.com/afip-einvoicing/internal/domain/invoice"
)

// currencyMap translates ISO-4217 codes to the authority's proprietary
// 3-letter codes. Unknown codes pass through unchanged.
var currencyMap = map[string]string{
	"ARS": "PES",
	"USD": "DOL",
	"EUR": "EUR",
}

func mapCurrency(isoCode string) string {
	if code, ok := currencyMap[isoCode]; ok {
		return code
	}
	return isoCode
}

// voucherDetail mirrors the authority's FECAEDetRequest structure. Field
// names are authority-defined and preserved verbatim for compatibility.
type voucherDetail struct {
	Concepto               int         `xml:"Concepto"`
	DocTipo                int         `xml:"DocTipo"`
	DocNro                 int64       `xml:"DocNro"`
	CbteDesde              int64       `xml:"CbteDesde"`
	CbteHasta              int64       `xml:"CbteHasta"`
	CbteFch                string      `xml:"CbteFch"`
	ImpTotal               float64     `xml:"ImpTotal"`
	ImpTotConc             float64     `xml:"ImpTotConc"`
	ImpNeto                float64     `xml:"ImpNeto"`
	ImpOpEx                float64     `xml:"ImpOpEx"`
	ImpTrib                float64     `xml:"ImpTrib"`
	ImpIVA                 float64     `xml:"ImpIVA"`
	FchServDesde           string      `xml:"FchServDesde,omitempty"`
	FchServHasta           string      `xml:"FchServHasta,omitempty"`
	FchVtoPago             string      `xml:"FchVtoPago,omitempty"`
	MonId                  string      `xml:"MonId"`
	MonCotiz               float64     `xml:"MonCotiz"`
	CondicionIVAReceptorId int         `xml:"CondicionIVAReceptorId"`
	Iva                    *vatItemSet `xml:"Iva,omitempty"`
}

type vatItemSet struct {
	Items []vatItem `xml:"AlicIva"`
}

type vatItem struct {
	Id      int     `xml:"Id"`
	BaseImp float64 `xml:"BaseImp"`
	Importe float64 `xml:"Importe"`
}

// buildVoucherDetail maps the invoice to the authority's request payload.
// Service-period dates are included only for service concepts (2 and 3).
func buildVoucherDetail(inv *invoice.Invoice, voucherNumber int64) voucherDetail {
	detail := voucherDetail{
		Concepto:               inv.Concept,
		DocTipo:                inv.DocumentType,
		DocNro:                 inv.DocumentNumber,
		CbteDesde:              voucherNumber,
		CbteHasta:              voucherNumber,
		CbteFch:                inv.VoucherDate.Compact(),
		ImpTotal:               inv.Total.Decimal(),
		ImpTotConc:             inv.Untaxed.Decimal(),
		ImpNeto:                inv.Net.Decimal(),
		ImpOpEx:                inv.Exempt.Decimal(),
		ImpTrib:                inv.OtherTax.Decimal(),
		ImpIVA:                 inv.Vat.Decimal(),
		MonId:                  mapCurrency(inv.Currency()),
		MonCotiz:               inv.CurrencyRate,
		CondicionIVAReceptorId: inv.ReceiverVatConditionID,
	}

	if len(inv.VatItems) > 0 {
		set := &vatItemSet{Items: make([]vatItem, 0, len(inv.VatItems))}
		for _, item := range inv.VatItems {
			set.Items = append(set.Items, vatItem{
				Id:      item.RateCategoryID,
				BaseImp: item.TaxableBase,
				Importe: item.TaxAmount,
			})
		}
		detail.Iva = set
	}

	if inv.RequiresServiceDates() {
		if !inv.ServiceFrom.IsZero() {
			detail.FchServDesde = inv.ServiceFrom.Compact()
		}
		if !inv.ServiceTo.IsZero() {
			detail.FchServHasta = inv.ServiceTo.Compact()
		}
		if !inv.PaymentDue.IsZero() {
			detail.FchVtoPago = inv.PaymentDue.Compact()
		}
	}

	return detail
}

// Request/response envelopes for the WSFEv1 SOAP operations the client uses.

type authData struct {
	Token string `xml:"Token"`
	Sign  string `xml:"Sign"`
	Cuit  int64  `xml:"Cuit"`
}

type caeRequest struct {
	XMLName xml.Name `xml:"FECAESolicitar"`
	Xmlns   string   `xml:"xmlns,attr"`
	Auth    authData `xml:"Auth"`
	FeCAEReq struct {
		FeCabReq struct {
			CantReg  int `xml:"CantReg"`
			PtoVta   int `xml:"PtoVta"`
			CbteTipo int `xml:"CbteTipo"`
		} `xml:"FeCabReq"`
		FeDetReq struct {
			Details []voucherDetail `xml:"FECAEDetRequest"`
		} `xml:"FeDetReq"`
	} `xml:"FeCAEReq"`
}

type caeResponse struct {
	Result struct {
		FeCabResp struct {
			Resultado string `xml:"Resultado"`
		} `xml:"FeCabResp"`
		FeDetResp struct {
			Details []struct {
				CbteDesde    int64  `xml:"CbteDesde"`
				CAE          string `xml:"CAE"`
				CAEFchVto    string `xml:"CAEFchVto"`
				Resultado    string `xml:"Resultado"`
				Observations struct {
					Items []apiError `xml:"Obs"`
				} `xml:"Observaciones"`
			} `xml:"FECAEDetResponse"`
		} `xml:"FeDetResp"`
		Errors struct {
			Items []apiError `xml:"Err"`
		} `xml:"Errors"`
	} `xml:"FECAESolicitarResult"`
}

type lastVoucherRequest struct {
	XMLName  xml.Name `xml:"FECompUltimoAutorizado"`
	Xmlns    string   `xml:"xmlns,attr"`
	Auth     authData `xml:"Auth"`
	PtoVta   int      `xml:"PtoVta"`
	CbteTipo int      `xml:"CbteTipo"`
}

type lastVoucherResponse struct {
	Result struct {
		CbteNro int64 `xml:"CbteNro"`
		Errors  struct {
			Items []apiError `xml:"Err"`
		} `xml:"Errors"`
	} `xml:"FECompUltimoAutorizadoResult"`
}

type voucherQueryRequest struct {
	XMLName xml.Name `xml:"FECompConsultar"`
	Xmlns   string   `xml:"xmlns,attr"`
	Auth    authData `xml:"Auth"`
	FeCompConsReq struct {
		CbteTipo int   `xml:"CbteTipo"`
		CbteNro  int64 `xml:"CbteNro"`
		PtoVta   int   `xml:"PtoVta"`
	} `xml:"FeCompConsReq"`
}

type voucherQueryResponse struct {
	Result struct {
		ResultGet struct {
			CbteDesde int64  `xml:"CbteDesde"`
			CAE       string `xml:"CodAutorizacion"`
			CAEFchVto string `xml:"FchVto"`
			Resultado string `xml:"Resultado"`
		} `xml:"ResultGet"`
		Errors struct {
			Items []apiError `xml:"Err"`
		} `xml:"Errors"`
	} `xml:"FECompConsultarResult"`
}

type apiError struct {
	Code    int    `xml:"Code"`
	Message string `xml:"Msg"`
}
