package sync

import (
	"context"
	"sort"
	stdsync "sync"
	"time"

	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
)

// Credentials are the per-connection adapter fields (API keys, tokens).
type Credentials map[string]string

// AdapterConfig is the resolved window and scope of one sync run.
type AdapterConfig struct {
	DateFrom time.Time      `json:"date_from"`
	DateTo   time.Time      `json:"date_to"`
	SyncType types.SyncType `json:"sync_type"`
}

// ConnectionTestResult reports the outcome of a credential probe.
type ConnectionTestResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Records are the rows one adapter run produced, ready for upsert.
type Records struct {
	Campaigns []*models.Campaign
	Coupons   []*models.Coupon
	Purchases []*models.Purchase
}

// AdapterResult is the uniform outcome of one adapter sync call.
type AdapterResult struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Records  Records        `json:"-"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RequiredField describes one credential field an adapter needs.
type RequiredField struct {
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// CredentialValidation reports field-level credential problems.
type CredentialValidation struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// NetworkAdapter is the capability implemented once per affiliate network.
type NetworkAdapter interface {
	Name() string
	TestConnection(ctx context.Context, creds Credentials) (*ConnectionTestResult, error)
	SyncData(ctx context.Context, creds Credentials, cfg AdapterConfig) (*AdapterResult, error)
	RequiredFields() map[string]RequiredField
	DefaultConfig() map[string]any
	ValidateCredentials(creds Credentials) *CredentialValidation
}

// Registry maps network names to adapters. Adapters register at startup;
// adding a network is a registration call, not an edit to a dispatcher.
type Registry struct {
	mu       stdsync.RWMutex
	adapters map[string]NetworkAdapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]NetworkAdapter)}
}

func (r *Registry) Register(a NetworkAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

func (r *Registry) Resolve(name string) (NetworkAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
