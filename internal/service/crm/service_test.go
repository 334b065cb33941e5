package crm_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/service/crm"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

type fixture struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	svc       *crm.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(customers, products)
	outbox := memory.NewOutboxRepository()

	return &fixture{
		customers: customers,
		products:  products,
		orders:    orders,
		outbox:    outbox,
		svc:       crm.NewService(customers, products, orders, outbox, nil),
	}
}

func (f *fixture) createCustomer(t *testing.T, name, email, phone string) domain.Customer {
	t.Helper()

	result, err := f.svc.CreateCustomer(crm.CustomerInput{Name: name, Email: email, Phone: phone})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.NotNil(t, result.Customer)
	return *result.Customer
}

func (f *fixture) createProduct(t *testing.T, name string, price float64, stock int32) domain.Product {
	t.Helper()

	result, err := f.svc.CreateProduct(crm.ProductInput{
		Name:  name,
		Price: decimal.NewFromFloat(price),
		Stock: stock,
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.NotNil(t, result.Product)
	return *result.Product
}

func TestCreateCustomer(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateCustomer(crm.CustomerInput{
		Name:  "Alice",
		Email: "alice@example.com",
		Phone: "+1234567890",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Customer)
	assert.Equal(t, "Customer created successfully", result.Message)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Customer.ID)

	// Событие customer.created попадает в outbox.
	pending, err := f.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "customer.created", pending[0].EventType)
}

func TestCreateCustomer_InvalidPhone(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateCustomer(crm.CustomerInput{
		Name:  "Alice",
		Email: "alice@example.com",
		Phone: "not-a-phone",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Customer)
	assert.Contains(t, result.Errors, "Invalid phone format. Use +1234567890 or 123-456-7890")

	// Невалидный клиент не сохраняется.
	customers, err := f.svc.ListCustomers(domain.CustomerFilter{})
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.createCustomer(t, "Alice", "alice@example.com", "")

	result, err := f.svc.CreateCustomer(crm.CustomerInput{Name: "Clone", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Nil(t, result.Customer)
	assert.Contains(t, result.Errors, "Email already exists")
}

func TestCreateCustomer_AllViolationsReported(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateCustomer(crm.CustomerInput{Phone: "bad"})
	require.NoError(t, err)
	assert.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors, "Name is required")
	assert.Contains(t, result.Errors, "Email is required")
}

func TestBulkCreateCustomers_PartialSuccess(t *testing.T) {
	f := newFixture(t)
	f.createCustomer(t, "Existing", "taken@example.com", "")

	result, err := f.svc.BulkCreateCustomers([]crm.CustomerInput{
		{Name: "First", Email: "first@example.com"},
		{Name: "Dup", Email: "taken@example.com"},
		{Name: "BadPhone", Email: "phone@example.com", Phone: "xyz"},
		{Name: "Second", Email: "second@example.com", Phone: "123-456-7890"},
	})
	require.NoError(t, err)

	require.Len(t, result.Customers, 2)
	assert.Equal(t, "first@example.com", result.Customers[0].Email)
	assert.Equal(t, "second@example.com", result.Customers[1].Email)

	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors, "Email already exists: taken@example.com")
	assert.Contains(t, result.Errors, "Invalid phone format: xyz")

	// Успешные строки сохранены несмотря на ошибки в соседних.
	customers, err := f.svc.ListCustomers(domain.CustomerFilter{})
	require.NoError(t, err)
	assert.Len(t, customers, 3)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateProduct(crm.ProductInput{Name: "Laptop", Price: decimal.Zero, Stock: 1})
	require.NoError(t, err)
	assert.Nil(t, result.Product)
	assert.Contains(t, result.Errors, "Price must be positive")

	result, err = f.svc.CreateProduct(crm.ProductInput{Name: "Laptop", Price: decimal.NewFromInt(10), Stock: -1})
	require.NoError(t, err)
	assert.Nil(t, result.Product)
	assert.Contains(t, result.Errors, "Stock cannot be negative")

	products, err := f.svc.ListProducts(domain.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCreateOrder_TotalFromCurrentPrices(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "Alice", "alice@example.com", "")
	p1 := f.createProduct(t, "Laptop", 15.75, 4)
	p2 := f.createProduct(t, "Mouse", 9.25, 30)

	result, err := f.svc.CreateOrder(crm.OrderInput{
		CustomerID: customer.ID,
		ProductIDs: []string{p1.ID, p2.ID},
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.NotNil(t, result.Order)

	assert.True(t, result.Order.TotalAmount.Equal(decimal.NewFromFloat(25.00)),
		"expected total 25.00, got %s", result.Order.TotalAmount)
	assert.Equal(t, customer.ID, result.Order.Customer.ID)
	assert.Len(t, result.Order.Products, 2)
	assert.False(t, result.Order.OrderDate.IsZero())
}

func TestCreateOrder_InvalidCustomer(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, "Laptop", 10, 4)

	result, err := f.svc.CreateOrder(crm.OrderInput{
		CustomerID: "ghost",
		ProductIDs: []string{p.ID},
	})
	require.NoError(t, err)
	assert.Nil(t, result.Order)
	assert.Equal(t, []string{"Invalid customer ID: ghost"}, result.Errors)
}

func TestCreateOrder_InvalidProductRejectsWholeOrder(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "Alice", "alice@example.com", "")
	p := f.createProduct(t, "Laptop", 10, 4)

	result, err := f.svc.CreateOrder(crm.OrderInput{
		CustomerID: customer.ID,
		ProductIDs: []string{p.ID, "ghost"},
	})
	require.NoError(t, err)
	assert.Nil(t, result.Order)
	assert.Contains(t, result.Errors, "Invalid product ID: ghost")

	// Ни одного заказа не создано: частичных заказов не бывает.
	orders, err := f.svc.ListOrders(domain.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_NoProducts(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "Alice", "alice@example.com", "")

	result, err := f.svc.CreateOrder(crm.OrderInput{CustomerID: customer.ID})
	require.NoError(t, err)
	assert.Nil(t, result.Order)
	assert.Contains(t, result.Errors, "No valid products provided")
}

func TestCreateOrder_ExplicitOrderDate(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "Alice", "alice@example.com", "")
	p := f.createProduct(t, "Laptop", 10, 4)

	orderDate := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	result, err := f.svc.CreateOrder(crm.OrderInput{
		CustomerID: customer.ID,
		ProductIDs: []string{p.ID},
		OrderDate:  &orderDate,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.True(t, result.Order.OrderDate.Equal(orderDate))
}

func TestRestockLowStock(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "A", 10, 3)
	f.createProduct(t, "B", 10, 12)
	f.createProduct(t, "C", 10, 5)

	result, err := f.svc.RestockLowStock()
	require.NoError(t, err)
	assert.Equal(t, "Low stock products updated successfully", result.Message)
	require.Len(t, result.Products, 2)

	stocks := []int32{result.Products[0].Stock, result.Products[1].Stock}
	assert.ElementsMatch(t, []int32{13, 15}, stocks)

	// Отсутствие low-stock товаров остаётся успехом.
	again, err := f.svc.RestockLowStock()
	require.NoError(t, err)
	assert.Equal(t, "Low stock products updated successfully", again.Message)
	assert.Empty(t, again.Products)
}

func TestSummarize(t *testing.T) {
	f := newFixture(t)

	empty, err := f.svc.Summarize()
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalCustomers)
	assert.Equal(t, int64(0), empty.TotalOrders)
	assert.True(t, empty.TotalRevenue.Equal(decimal.Zero))

	c1 := f.createCustomer(t, "Alice", "alice@example.com", "")
	f.createCustomer(t, "Bob", "bob@example.com", "")
	p1 := f.createProduct(t, "Laptop", 15.75, 4)
	p2 := f.createProduct(t, "Mouse", 9.25, 30)

	_, err = f.svc.CreateOrder(crm.OrderInput{CustomerID: c1.ID, ProductIDs: []string{p1.ID, p2.ID}})
	require.NoError(t, err)

	summary, err := f.svc.Summarize()
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalCustomers)
	assert.Equal(t, int64(1), summary.TotalOrders)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromFloat(25.00)),
		"expected revenue 25.00, got %s", summary.TotalRevenue)
}

func TestListProducts_PriceRange(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Cheap", 5, 1)
	f.createProduct(t, "Mid", 500, 1)
	f.createProduct(t, "Pricey", 5000, 1)

	gte := decimal.NewFromInt(100)
	lte := decimal.NewFromInt(1000)
	products, err := f.svc.ListProducts(domain.ProductFilter{PriceGTE: &gte, PriceLTE: &lte})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mid", products[0].Name)
}
