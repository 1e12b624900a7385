package storage

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

// JSONProductRepository reads products.json on every call so edits to the
// file show up without a restart.
type JSONProductRepository struct {
	file *jsonFile
}

func NewJSONProductRepository(dataDir string) *JSONProductRepository {
	return &JSONProductRepository{file: newJSONFile(dataDir, "products.json")}
}

func (r *JSONProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	products := []domain.Product{}
	if err := r.file.load(&products); err != nil {
		return nil, domain.Persistence("failed to load products", err)
	}
	for i := range products {
		if products[i].Tags == nil {
			products[i].Tags = []string{}
		}
	}
	return products, nil
}

func (r *JSONProductRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.NotFound("product_not_found", "Product not found")
}

type orderRecord struct {
	domain.Order
	CreatedAt jsonTime `json:"created_at"`
}

// JSONOrderRepository keeps the ledger in orders.json. New ids are
// count+1, so hand-deleting records from the file can produce duplicates.
type JSONOrderRepository struct {
	file *jsonFile
	now  func() time.Time
}

func NewJSONOrderRepository(dataDir string) *JSONOrderRepository {
	return &JSONOrderRepository{file: newJSONFile(dataDir, "orders.json"), now: time.Now}
}

func (r *JSONOrderRepository) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	records := []orderRecord{}
	if err := r.file.load(&records); err != nil {
		return domain.Order{}, domain.Persistence("failed to load orders", err)
	}
	order.ID = int64(len(records)) + 1
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.now().UTC()
	}
	records = append(records, orderRecord{Order: order, CreatedAt: jsonTime(order.CreatedAt)})
	if err := r.file.store(records); err != nil {
		return domain.Order{}, domain.Persistence("failed to save order", err)
	}
	return order, nil
}

func (r *JSONOrderRepository) List(ctx context.Context, email string) ([]domain.Order, error) {
	r.file.mu.Lock()
	records := []orderRecord{}
	err := r.file.load(&records)
	r.file.mu.Unlock()
	if err != nil {
		return nil, domain.Persistence("failed to load orders", err)
	}

	email = strings.TrimSpace(email)
	orders := []domain.Order{}
	for _, rec := range records {
		if email != "" && !strings.EqualFold(strings.TrimSpace(rec.Email), email) {
			continue
		}
		orders = append(orders, rec.toOrder())
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (r *JSONOrderRepository) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	orders, err := r.List(ctx, "")
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, domain.NotFound("order_not_found", "Order not found")
}

func (rec orderRecord) toOrder() domain.Order {
	o := rec.Order
	o.CreatedAt = time.Time(rec.CreatedAt)
	if o.Items == nil {
		o.Items = []domain.LineItem{}
	}
	return o
}

type userRecord struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Password  string   `json:"password"`
	CreatedAt jsonTime `json:"created_at"`
}

func (rec userRecord) toAccount() domain.Account {
	return domain.Account{
		ID:           rec.ID,
		Email:        rec.Email,
		Name:         rec.Name,
		PasswordHash: rec.Password,
		CreatedAt:    time.Time(rec.CreatedAt),
	}
}

// JSONUserRepository keeps customers in users.json. New ids are max+1.
type JSONUserRepository struct {
	file *jsonFile
	now  func() time.Time
}

func NewJSONUserRepository(dataDir string) *JSONUserRepository {
	return &JSONUserRepository{file: newJSONFile(dataDir, "users.json"), now: time.Now}
}

func (r *JSONUserRepository) load() ([]userRecord, error) {
	records := []userRecord{}
	if err := r.file.load(&records); err != nil {
		return nil, domain.Persistence("failed to load users", err)
	}
	return records, nil
}

func (r *JSONUserRepository) Create(ctx context.Context, acc domain.Account) (domain.Account, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return domain.Account{}, err
	}
	var maxID int64
	for _, rec := range records {
		if strings.EqualFold(strings.TrimSpace(rec.Email), strings.TrimSpace(acc.Email)) {
			return domain.Account{}, domain.Conflict("email_taken", "Email already registered")
		}
		maxID = max(maxID, rec.ID)
	}

	acc.ID = maxID + 1
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = r.now().UTC()
	}
	records = append(records, userRecord{
		ID:        acc.ID,
		Email:     acc.Email,
		Name:      acc.Name,
		Password:  acc.PasswordHash,
		CreatedAt: jsonTime(acc.CreatedAt),
	})
	if err := r.file.store(records); err != nil {
		return domain.Account{}, domain.Persistence("failed to save user", err)
	}
	return acc, nil
}

func (r *JSONUserRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.find(func(rec userRecord) bool {
		return strings.EqualFold(strings.TrimSpace(rec.Email), strings.TrimSpace(email))
	})
}

func (r *JSONUserRepository) FindByID(ctx context.Context, id int64) (domain.Account, error) {
	return r.find(func(rec userRecord) bool { return rec.ID == id })
}

func (r *JSONUserRepository) find(match func(userRecord) bool) (domain.Account, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return domain.Account{}, err
	}
	for _, rec := range records {
		if match(rec) {
			return rec.toAccount(), nil
		}
	}
	return domain.Account{}, domain.NotFound("account_not_found", "Account not found")
}

func (r *JSONUserRepository) List(ctx context.Context) ([]domain.Account, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	accounts := make([]domain.Account, 0, len(records))
	for _, rec := range records {
		accounts = append(accounts, rec.toAccount())
	}
	return accounts, nil
}
