package service

import (
	"context"
	"errors"

	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

// CartOwner identifies whose cart an operation targets. Authenticated
// requests set UserID and the cart lives in the database; guests carry a
// SessionID and the cart lives in Redis.
type CartOwner struct {
	UserID    *uint
	SessionID string
}

func UserOwner(userID uint) CartOwner {
	return CartOwner{UserID: &userID}
}

func SessionOwner(sessionID string) CartOwner {
	return CartOwner{SessionID: sessionID}
}

// CartLine is one product entry of a cart, priced at the current catalog
// price. Checkout re-prices inside its own transaction.
type CartLine struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
	Subtotal float64       `json:"subtotal"`
}

// CartView is a cart rendered for display.
type CartView struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

type CartService interface {
	Items(ctx context.Context, owner CartOwner) (*CartView, error)
	Add(ctx context.Context, owner CartOwner, productID uint, quantity int) error
	SetQuantity(ctx context.Context, owner CartOwner, productID uint, quantity int) error
	Remove(ctx context.Context, owner CartOwner, productID uint) error
	Clear(ctx context.Context, owner CartOwner) error
	Count(ctx context.Context, owner CartOwner) int
	Merge(ctx context.Context, sessionID string, userID uint) error
}

// lineStore is the minimal cart storage port. The service logic is written
// once against it; adapters bind it to the cart tables or to the session
// store.
type lineStore interface {
	lines(ctx context.Context) (map[uint]int, error)
	setLine(ctx context.Context, productID uint, quantity int) error
	removeLine(ctx context.Context, productID uint) error
	clear(ctx context.Context) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	sessionRepo repository.SessionCartStore
	productRepo repository.ProductRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	sessionRepo repository.SessionCartStore,
	productRepo repository.ProductRepository,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		sessionRepo: sessionRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) storeFor(owner CartOwner) (lineStore, error) {
	if owner.UserID != nil {
		return &dbLineStore{repo: s.cartRepo, userID: *owner.UserID}, nil
	}
	if owner.SessionID != "" {
		return &sessionLineStore{store: s.sessionRepo, sessionID: owner.SessionID}, nil
	}
	return nil, errors.New("cart owner has neither user nor session")
}

func (s *cartService) Items(ctx context.Context, owner CartOwner) (*CartView, error) {
	logger.Debug("Fetching cart", map[string]interface{}{
		"user_id":    owner.UserID,
		"session_id": owner.SessionID,
	})

	store, err := s.storeFor(owner)
	if err != nil {
		return nil, err
	}

	lines, err := store.lines(ctx)
	if err != nil {
		logger.Error("Failed to fetch cart lines", err, map[string]interface{}{
			"user_id":    owner.UserID,
			"session_id": owner.SessionID,
		})
		return nil, err
	}

	ids := make([]uint, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}

	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	// Lines whose product has since been deleted are skipped rather than
	// failing the whole view.
	view := &CartView{Lines: []CartLine{}}
	for _, p := range products {
		qty := lines[p.ID]
		if qty <= 0 {
			continue
		}
		subtotal := p.Price * float64(qty)
		view.Lines = append(view.Lines, CartLine{Product: p, Quantity: qty, Subtotal: subtotal})
		view.Total += subtotal
	}

	logger.Info("Cart fetched successfully", map[string]interface{}{
		"user_id":    owner.UserID,
		"session_id": owner.SessionID,
		"line_count": len(view.Lines),
	})
	return view, nil
}

func (s *cartService) Add(ctx context.Context, owner CartOwner, productID uint, quantity int) error {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    owner.UserID,
		"session_id": owner.SessionID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	store, err := s.storeFor(owner)
	if err != nil {
		return err
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"product_id": productID,
			})
			return ErrProductNotFound
		}
		return err
	}

	lines, err := store.lines(ctx)
	if err != nil {
		return err
	}

	requested := lines[productID] + quantity

	// Advisory check only. The authoritative stock check happens inside the
	// checkout transaction.
	if product.StockQuantity < requested {
		logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
			"product_id": productID,
			"requested":  requested,
			"available":  product.StockQuantity,
		})
		return ErrInsufficientStock
	}

	if err := store.setLine(ctx, productID, requested); err != nil {
		logger.Error("Failed to write cart line", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	logger.Info("Cart item added successfully", map[string]interface{}{
		"product_id": productID,
		"quantity":   requested,
	})
	return nil
}

// SetQuantity replaces a line's quantity. Zero or negative removes the line.
func (s *cartService) SetQuantity(ctx context.Context, owner CartOwner, productID uint, quantity int) error {
	logger.Info("Updating cart item quantity", map[string]interface{}{
		"user_id":    owner.UserID,
		"session_id": owner.SessionID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		return s.Remove(ctx, owner, productID)
	}

	store, err := s.storeFor(owner)
	if err != nil {
		return err
	}

	lines, err := store.lines(ctx)
	if err != nil {
		return err
	}
	if _, ok := lines[productID]; !ok {
		logger.Warn("Cart item not found", map[string]interface{}{
			"product_id": productID,
		})
		return ErrCartItemNotFound
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if product.StockQuantity < quantity {
		logger.Warn("Cannot update cart item: insufficient stock", map[string]interface{}{
			"product_id": productID,
			"requested":  quantity,
			"available":  product.StockQuantity,
		})
		return ErrInsufficientStock
	}

	if err := store.setLine(ctx, productID, quantity); err != nil {
		logger.Error("Failed to update cart line", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}

func (s *cartService) Remove(ctx context.Context, owner CartOwner, productID uint) error {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":    owner.UserID,
		"session_id": owner.SessionID,
		"product_id": productID,
	})

	store, err := s.storeFor(owner)
	if err != nil {
		return err
	}

	lines, err := store.lines(ctx)
	if err != nil {
		return err
	}
	if _, ok := lines[productID]; !ok {
		return ErrCartItemNotFound
	}

	if err := store.removeLine(ctx, productID); err != nil {
		logger.Error("Failed to remove cart line", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}

func (s *cartService) Clear(ctx context.Context, owner CartOwner) error {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id":    owner.UserID,
		"session_id": owner.SessionID,
	})

	store, err := s.storeFor(owner)
	if err != nil {
		return err
	}
	return store.clear(ctx)
}

// Count returns the total quantity across all lines. Failures count as an
// empty cart; the badge in the header is not worth an error page.
func (s *cartService) Count(ctx context.Context, owner CartOwner) int {
	store, err := s.storeFor(owner)
	if err != nil {
		return 0
	}

	lines, err := store.lines(ctx)
	if err != nil {
		logger.Warn("Failed to count cart lines", map[string]interface{}{
			"user_id":    owner.UserID,
			"session_id": owner.SessionID,
		})
		return 0
	}

	total := 0
	for _, qty := range lines {
		total += qty
	}
	return total
}

// Merge folds a guest session cart into the user's persistent cart at
// login. Lines that no longer fit (deleted product, exhausted stock) are
// logged and skipped; the session cart is discarded either way so the
// guest state never survives authentication.
func (s *cartService) Merge(ctx context.Context, sessionID string, userID uint) error {
	logger.Info("Merging session cart into user cart", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
	})

	if sessionID == "" {
		return nil
	}

	lines, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		logger.Error("Failed to read session cart for merge", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return err
	}

	owner := UserOwner(userID)
	merged, skipped := 0, 0
	for productID, qty := range lines {
		if err := s.Add(ctx, owner, productID, qty); err != nil {
			logger.Warn("Skipping cart line during merge", map[string]interface{}{
				"session_id": sessionID,
				"user_id":    userID,
				"product_id": productID,
				"reason":     err.Error(),
			})
			skipped++
			continue
		}
		merged++
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		logger.Warn("Failed to delete session cart after merge", map[string]interface{}{
			"session_id": sessionID,
		})
	}

	logger.Info("Session cart merged", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
		"merged":     merged,
		"skipped":    skipped,
	})
	return nil
}

// dbLineStore binds the line port to the cart tables.
type dbLineStore struct {
	repo   repository.CartRepository
	userID uint

	cartID uint
}

func (d *dbLineStore) cart() (uint, error) {
	if d.cartID != 0 {
		return d.cartID, nil
	}
	cart, err := d.repo.FindOrCreateByUserID(d.userID)
	if err != nil {
		return 0, err
	}
	d.cartID = cart.ID
	return d.cartID, nil
}

func (d *dbLineStore) lines(ctx context.Context) (map[uint]int, error) {
	cartID, err := d.cart()
	if err != nil {
		return nil, err
	}
	items, err := d.repo.FindItems(cartID)
	if err != nil {
		return nil, err
	}

	lines := make(map[uint]int, len(items))
	for _, item := range items {
		lines[item.ProductID] = item.Quantity
	}
	return lines, nil
}

func (d *dbLineStore) setLine(ctx context.Context, productID uint, quantity int) error {
	cartID, err := d.cart()
	if err != nil {
		return err
	}

	item, err := d.repo.FindItem(cartID, productID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return d.repo.CreateItem(&model.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	item.Quantity = quantity
	return d.repo.UpdateItem(item)
}

func (d *dbLineStore) removeLine(ctx context.Context, productID uint) error {
	cartID, err := d.cart()
	if err != nil {
		return err
	}
	return d.repo.DeleteItem(cartID, productID)
}

func (d *dbLineStore) clear(ctx context.Context) error {
	cartID, err := d.cart()
	if err != nil {
		return err
	}
	return d.repo.DeleteItems(cartID)
}

// sessionLineStore binds the line port to the Redis session store. Writes
// replace the whole cart; guest carts are small enough that read-modify-
// write is fine.
type sessionLineStore struct {
	store     repository.SessionCartStore
	sessionID string
}

func (s *sessionLineStore) lines(ctx context.Context) (map[uint]int, error) {
	return s.store.Get(ctx, s.sessionID)
}

func (s *sessionLineStore) setLine(ctx context.Context, productID uint, quantity int) error {
	lines, err := s.store.Get(ctx, s.sessionID)
	if err != nil {
		return err
	}
	lines[productID] = quantity
	return s.store.Save(ctx, s.sessionID, lines)
}

func (s *sessionLineStore) removeLine(ctx context.Context, productID uint) error {
	lines, err := s.store.Get(ctx, s.sessionID)
	if err != nil {
		return err
	}
	delete(lines, productID)
	return s.store.Save(ctx, s.sessionID, lines)
}

func (s *sessionLineStore) clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.sessionID)
}
