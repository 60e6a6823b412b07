package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fabclean/fabclean-web/libs/auth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type account struct {
	customer
	passwordHash []byte
}

type service struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Duration string  `json:"duration"`
	Status   string  `json:"status"`
}

type order struct {
	ID                  string    `json:"id"`
	CustomerID          string    `json:"customerId,omitempty"`
	CustomerName        string    `json:"customerName"`
	CustomerEmail       string    `json:"customerEmail"`
	CustomerPhone       string    `json:"customerPhone"`
	ServiceID           string    `json:"serviceId"`
	PickupDate          string    `json:"pickupDate"`
	SpecialInstructions string    `json:"specialInstructions"`
	Total               float64   `json:"total"`
	CreatedAt           time.Time `json:"createdAt"`
}

// server is an in-memory stand-in for the FabClean API.
type server struct {
	secret   string
	tokenTTL time.Duration

	mu       sync.RWMutex
	accounts map[string]*account // by lower-cased email
	services []service
	orders   []order
}

func newServer(secret string, tokenTTL time.Duration) *server {
	return &server{
		secret:   secret,
		tokenTTL: tokenTTL,
		accounts: map[string]*account{},
		services: seedServices(),
	}
}

func seedServices() []service {
	return []service{
		{ID: uuid.NewString(), Name: "Wash & Fold", Price: 120, Duration: "24 hours", Status: "Active"},
		{ID: uuid.NewString(), Name: "Wash & Iron", Price: 180, Duration: "48 hours", Status: "Active"},
		{ID: uuid.NewString(), Name: "Dry Cleaning", Price: 249.5, Duration: "72 hours", Status: "Active"},
		{ID: uuid.NewString(), Name: "Shoe Cleaning", Price: 299, Duration: "4 days", Status: "Inactive"},
	}
}

func (s *server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", s.signup)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("GET /api/services", s.listServices)
	mux.HandleFunc("POST /api/orders", s.createOrder)
}

type signupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string   `json:"token"`
	Customer customer `json:"customer"`
}

func (s *server) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Phone == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	key := strings.ToLower(req.Email)
	s.mu.Lock()
	if _, exists := s.accounts[key]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	acc := &account{
		customer: customer{
			ID:    uuid.NewString(),
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		},
		passwordHash: hash,
	}
	s.accounts[key] = acc
	s.mu.Unlock()

	s.respondWithToken(w, http.StatusCreated, acc.customer)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	s.mu.RLock()
	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.respondWithToken(w, http.StatusOK, acc.customer)
}

func (s *server) respondWithToken(w http.ResponseWriter, status int, c customer) {
	now := time.Now().UTC()
	token, err := auth.SignHS256(auth.Claims{
		Sub:   c.ID,
		Email: c.Email,
		Name:  c.Name,
		Iat:   now.Unix(),
		Exp:   now.Add(s.tokenTTL).Unix(),
	}, s.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, status, authResponse{Token: token, Customer: c})
}

func (s *server) listServices(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	out := append([]service(nil), s.services...)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

type orderRequest struct {
	CustomerName        string          `json:"customerName"`
	CustomerEmail       string          `json:"customerEmail"`
	CustomerPhone       string          `json:"customerPhone"`
	ServiceID           string          `json:"serviceId"`
	PickupDate          string          `json:"pickupDate"`
	SpecialInstructions string          `json:"specialInstructions"`
	Total               json.RawMessage `json:"total"`
}

func (s *server) createOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := s.optionalClaims(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerPhone) == "" {
		writeError(w, http.StatusBadRequest, "Customer name and phone are required")
		return
	}
	if strings.TrimSpace(req.PickupDate) == "" {
		writeError(w, http.StatusBadRequest, "Pickup date is required")
		return
	}
	if _, err := time.Parse("2006-01-02", req.PickupDate); err != nil {
		writeError(w, http.StatusBadRequest, "Pickup date must be YYYY-MM-DD")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.findService(req.ServiceID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown service")
		return
	}
	if svc.Status != "Active" {
		writeError(w, http.StatusBadRequest, "Service is not available")
		return
	}
	total, err := parseTotal(req.Total)
	if err != nil || total != svc.Price {
		writeError(w, http.StatusBadRequest, "Total does not match service price")
		return
	}

	o := order{
		ID:                  uuid.NewString(),
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		ServiceID:           svc.ID,
		PickupDate:          req.PickupDate,
		SpecialInstructions: req.SpecialInstructions,
		Total:               total,
		CreatedAt:           time.Now().UTC(),
	}
	if claims != nil {
		o.CustomerID = claims.Sub
	}
	s.orders = append(s.orders, o)

	writeJSON(w, http.StatusCreated, map[string]string{"id": o.ID})
}

func (s *server) findService(id string) (service, bool) {
	for _, svc := range s.services {
		if svc.ID == id {
			return svc, true
		}
	}
	return service{}, false
}

// optionalClaims returns nil when no bearer token is present.
func (s *server) optionalClaims(r *http.Request) (*auth.Claims, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return nil, nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, errors.New("malformed authorization header")
	}
	return auth.ParseAndVerifyHS256(strings.TrimSpace(token), s.secret)
}

// parseTotal accepts a JSON number or a numeric string.
func parseTotal(raw json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
