package http

import (
	"crm-backend/internal/handlers"
	"crm-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	customerHandler *handlers.CustomerHandler,
	importHandler *handlers.ImportHandler,
	requestHandler *handlers.RequestHandler,
	quoteHandler *handlers.QuoteHandler,
	jobHandler *handlers.JobHandler,
	invoiceHandler *handlers.InvoiceHandler,
	paymentHandler *handlers.PaymentHandler,
	realtimeHandler *handlers.RealtimeHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Protected API routes - Profile
	meAPI := r.PathPrefix("/api/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	// Protected API routes - CSV import (registered before /{id} customer
	// routes so "import" is never captured as a customer id)
	importsAPI := r.PathPrefix("/api/customers/import").Subrouter()
	importsAPI.Use(authMiddleware.Authenticate)
	importsAPI.HandleFunc("", importHandler.RunImport).Methods("POST")
	importsAPI.HandleFunc("/parse", importHandler.ParseUpload).Methods("POST")
	importsAPI.HandleFunc("/validate", importHandler.ValidateRows).Methods("POST")
	importsAPI.HandleFunc("/template", importHandler.DownloadTemplate).Methods("GET")

	// Protected API routes - Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/search", customerHandler.SearchCustomers).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.UpdateCustomer).Methods("PUT")
	customersAPI.HandleFunc("/{id}", customerHandler.DeleteCustomer).Methods("DELETE")

	// Protected API routes - Requests
	requestsAPI := r.PathPrefix("/api/requests").Subrouter()
	requestsAPI.Use(authMiddleware.Authenticate)
	requestsAPI.HandleFunc("", requestHandler.ListRequests).Methods("GET")
	requestsAPI.HandleFunc("", requestHandler.CreateRequest).Methods("POST")
	requestsAPI.HandleFunc("/{id}", requestHandler.GetRequest).Methods("GET")
	requestsAPI.HandleFunc("/{id}", requestHandler.UpdateRequest).Methods("PUT")
	requestsAPI.HandleFunc("/{id}", requestHandler.DeleteRequest).Methods("DELETE")
	requestsAPI.HandleFunc("/{id}/convert", requestHandler.ConvertRequest).Methods("POST")

	// Protected API routes - Quotes
	quotesAPI := r.PathPrefix("/api/quotes").Subrouter()
	quotesAPI.Use(authMiddleware.Authenticate)
	quotesAPI.HandleFunc("", quoteHandler.ListQuotes).Methods("GET")
	quotesAPI.HandleFunc("", quoteHandler.CreateQuote).Methods("POST")
	quotesAPI.HandleFunc("/{id}", quoteHandler.GetQuote).Methods("GET")
	quotesAPI.HandleFunc("/{id}", quoteHandler.UpdateQuote).Methods("PUT")
	quotesAPI.HandleFunc("/{id}", quoteHandler.DeleteQuote).Methods("DELETE")
	quotesAPI.HandleFunc("/{id}/status", quoteHandler.ChangeStatus).Methods("POST")
	quotesAPI.HandleFunc("/{id}/send", quoteHandler.SendQuote).Methods("POST")
	quotesAPI.HandleFunc("/{id}/convert/preview", quoteHandler.PreviewConversion).Methods("GET")
	quotesAPI.HandleFunc("/{id}/convert", quoteHandler.ConvertQuote).Methods("POST")

	// Protected API routes - Jobs
	jobsAPI := r.PathPrefix("/api/jobs").Subrouter()
	jobsAPI.Use(authMiddleware.Authenticate)
	jobsAPI.HandleFunc("", jobHandler.ListJobs).Methods("GET")
	jobsAPI.HandleFunc("", jobHandler.CreateJob).Methods("POST")
	jobsAPI.HandleFunc("/{id}", jobHandler.GetJob).Methods("GET")
	jobsAPI.HandleFunc("/{id}", jobHandler.UpdateJob).Methods("PUT")
	jobsAPI.HandleFunc("/{id}", jobHandler.DeleteJob).Methods("DELETE")
	jobsAPI.HandleFunc("/{id}/status", jobHandler.ChangeStatus).Methods("POST")

	// Protected API routes - Invoices
	invoicesAPI := r.PathPrefix("/api/invoices").Subrouter()
	invoicesAPI.Use(authMiddleware.Authenticate)
	invoicesAPI.HandleFunc("", invoiceHandler.ListInvoices).Methods("GET")
	invoicesAPI.HandleFunc("", invoiceHandler.CreateInvoice).Methods("POST")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.GetInvoice).Methods("GET")
	invoicesAPI.HandleFunc("/{id}/send", invoiceHandler.SendInvoice).Methods("POST")
	invoicesAPI.HandleFunc("/{id}/void", invoiceHandler.VoidInvoice).Methods("POST")
	invoicesAPI.HandleFunc("/{id}/pdf", invoiceHandler.DownloadPDF).Methods("GET")

	// Protected API routes - Payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("/intent", paymentHandler.CreateIntent).Methods("POST")
	paymentsAPI.HandleFunc("/intent/{id}", paymentHandler.GetIntent).Methods("GET")
	paymentsAPI.HandleFunc("/verify", paymentHandler.VerifyPayment).Methods("POST")

	// Protected API routes - Realtime change feed
	realtimeAPI := r.PathPrefix("/api/realtime").Subrouter()
	realtimeAPI.Use(authMiddleware.Authenticate)
	realtimeAPI.HandleFunc("", realtimeHandler.Subscribe).Methods("GET")

	// Detailed health for operators
	systemAPI := r.PathPrefix("/api/system").Subrouter()
	systemAPI.Use(authMiddleware.Authenticate)
	systemAPI.HandleFunc("/health", healthHandler.System).Methods("GET")

	return r
}
