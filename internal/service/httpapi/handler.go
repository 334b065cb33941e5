// Package httpapi реализует query/mutation API поверх CRM-сервиса:
// один JSON-эндпоинт, принимающий имя операции и переменные и
// возвращающий либо данные, либо список ошибок.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/metrics"
	"github.com/vladislavdragonenkov/crm/internal/service/crm"
)

// Path — путь document-эндпоинта API.
const Path = "/graphql"

// helloMessage отвечает на probe-операцию heartbeat-джобы.
const helloMessage = "Hello, CRM!"

var errUnknownOperation = errors.New("unknown operation")

// Request — конверт запроса: имя операции и её переменные.
type Request struct {
	Operation string          `json:"operation"`
	Variables json.RawMessage `json:"variables,omitempty"`
}

// Response — конверт ответа: либо данные, либо список ошибок, либо и то и другое
// (мутация с бизнес-ошибками возвращает errors при data=null).
type Response struct {
	Data   any      `json:"data,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// Handler обрабатывает document-запросы к CRM API.
type Handler struct {
	svc     *crm.Service
	metrics *metrics.APIMetrics
	logger  *log.Entry
}

// NewHandler конструирует API handler.
func NewHandler(svc *crm.Service, apiMetrics *metrics.APIMetrics, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	return &Handler{
		svc:     svc,
		metrics: apiMetrics,
		logger:  logger,
	}
}

// Register вешает handler на mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle(Path, h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Errors: []string{"method not allowed, use POST"}})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Errors: []string{fmt.Sprintf("invalid request body: %v", err)}})
		return
	}
	if req.Operation == "" {
		writeJSON(w, http.StatusBadRequest, Response{Errors: []string{"operation is required"}})
		return
	}

	start := time.Now()
	data, opErrs, err := h.dispatch(req.Operation, req.Variables)
	duration := time.Since(start)

	switch {
	case errors.Is(err, errUnknownOperation):
		h.observe(req.Operation, "unknown", duration)
		writeJSON(w, http.StatusBadRequest, Response{Errors: []string{fmt.Sprintf("unknown operation: %s", req.Operation)}})
	case err != nil:
		h.observe(req.Operation, "error", duration)
		h.logger.WithError(err).WithField("operation", req.Operation).Error("operation failed")
		writeJSON(w, http.StatusInternalServerError, Response{Errors: []string{"internal error"}})
	case len(opErrs) > 0:
		h.observe(req.Operation, "rejected", duration)
		writeJSON(w, http.StatusOK, Response{Data: data, Errors: opErrs})
	default:
		h.observe(req.Operation, "ok", duration)
		writeJSON(w, http.StatusOK, Response{Data: data})
	}
}

// dispatch разбирает переменные операции и вызывает сервис.
// Третий результат — инфраструктурная ошибка; бизнес-ошибки возвращаются списком.
func (h *Handler) dispatch(operation string, variables json.RawMessage) (any, []string, error) {
	switch operation {
	case "hello":
		return map[string]string{"hello": helloMessage}, nil, nil

	case "customers":
		var vars struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := decodeVars(variables, &vars); err != nil {
			return nil, []string{err.Error()}, nil
		}
		customers, err := h.svc.ListCustomers(domain.CustomerFilter{
			NameContains:  vars.Name,
			EmailContains: vars.Email,
		})
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"customers": customersPayload(customers)}, nil, nil

	case "products":
		var vars struct {
			Name     string           `json:"name"`
			PriceGte *decimal.Decimal `json:"priceGte"`
			PriceLte *decimal.Decimal `json:"priceLte"`
			StockGte *int32           `json:"stockGte"`
			StockLte *int32           `json:"stockLte"`
		}
		if err := decodeVars(variables, &vars); err != nil {
			return nil, []string{err.Error()}, nil
		}
		products, err := h.svc.ListProducts(domain.ProductFilter{
			NameContains: vars.Name,
			PriceGTE:     vars.PriceGte,
			PriceLTE:     vars.PriceLte,
			StockGTE:     vars.StockGte,
			StockLTE:     vars.StockLte,
		})
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"products": productsPayload(products)}, nil, nil

	case "orders":
		var vars struct {
			TotalAmountGte *decimal.Decimal `json:"totalAmountGte"`
			TotalAmountLte *decimal.Decimal `json:"totalAmountLte"`
			CustomerName   string           `json:"customerName"`
			ProductName    string           `json:"productName"`
			OrderDateGte   *time.Time       `json:"orderDateGte"`
		}
		if err := decodeVars(variables, &vars); err != nil {
			return nil, []string{err.Error()}, nil
		}
		orders, err := h.svc.ListOrders(domain.OrderFilter{
			TotalGTE:             vars.TotalAmountGte,
			TotalLTE:             vars.TotalAmountLte,
			CustomerNameContains: vars.CustomerName,
			ProductNameContains:  vars.ProductName,
			OrderDateGTE:         vars.OrderDateGte,
		})
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"orders": ordersPayload(orders)}, nil, nil

	case "summary":
		summary, err := h.svc.Summarize()
		if err != nil {
			return nil, nil, err
		}
		return summaryPayload{
			TotalCustomers: summary.TotalCustomers,
			TotalOrders:    summary.TotalOrders,
			TotalRevenue:   summary.TotalRevenue,
		}, nil, nil

	case "createCustomer":
		var vars struct {
			Input customerInput `json:"input"`
		}
		if err := decodeVars(variables, &vars); err != nil {
			return nil, []string{err.Error()}, nil
		}
		result, err := h.svc.CreateCustomer(crm.CustomerInput{
			Name:  vars.Input.Name,
			Email: vars.Input.Email,
			Phone: vars.Input.Phone,
		})
		if err != nil {
			return nil, nil, err
		}
		payload := map[string]any{"message": result.Message}
		if result.Customer != nil {
			payload["customer"] = customerPayloadOf(*result.Customer)
		}
		return payload, result.Errors, nil

	case "bulkCreateCustomers":
		var vars struct {
			Input []customerInput `json:"input"`
		}
		if err := decodeVars(variables, &vars); err != nil {
			return nil, []string{err.Error()}, nil
		}
		inputs := make([]crm.CustomerInput, 0, len(vars.Input))
		for _, in := range vars.Input {
			inputs = append(inputs, crm.CustomerInput{Name: in.Name, Email: in.Email, Phone: in.Phone})
		}
		result, err := h.svc.BulkCreateCustomers(inputs)
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"customers": customersPayload(result.Customers)}, result.Errors, nil

	case "createProduct":
		var vars struct {
			Input productInput `json:"input"`
		}
		if err := decodeVars(variables, &vars); err != nil {
			return nil, []string{err.Error()}, nil
		}
		result, err := h.svc.CreateProduct(crm.ProductInput{
			Name:  vars.Input.Name,
			Price: vars.Input.Price,
			Stock: vars.Input.Stock,
		})
		if err != nil {
			return nil, nil, err
		}
		payload := map[string]any{}
		if result.Product != nil {
			payload["product"] = productPayloadOf(*result.Product)
		}
		return payload, result.Errors, nil

	case "createOrder":
		var vars struct {
			Input orderInput `json:"input"`
		}
		if err := decodeVars(variables, &vars); err != nil {
			return nil, []string{err.Error()}, nil
		}
		result, err := h.svc.CreateOrder(crm.OrderInput{
			CustomerID: vars.Input.CustomerID,
			ProductIDs: vars.Input.ProductIDs,
			OrderDate:  vars.Input.OrderDate,
		})
		if err != nil {
			return nil, nil, err
		}
		payload := map[string]any{}
		if result.Order != nil {
			payload["order"] = orderPayloadOf(*result.Order)
		}
		return payload, result.Errors, nil

	case "restockLowStock":
		result, err := h.svc.RestockLowStock()
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{
			"products": productsPayload(result.Products),
			"message":  result.Message,
		}, nil, nil

	default:
		return nil, nil, errUnknownOperation
	}
}

func (h *Handler) observe(operation, result string, duration time.Duration) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveRequest(operation, result, duration)
}

// decodeVars разбирает переменные операции; отсутствующие переменные допустимы.
func decodeVars(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid variables: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
