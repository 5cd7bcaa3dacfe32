package http

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/identity"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// store is an in-memory stand-in for the Postgres repositories.
type store struct {
	mu       sync.Mutex
	packages []domain.Package
	features map[string]domain.PackageFeatures
	bookings []domain.Booking
	reviews  []domain.Review
	profiles map[string]domain.Profile
}

func newStore() *store {
	return &store{
		features: map[string]domain.PackageFeatures{},
		profiles: map[string]domain.Profile{},
	}
}

type fakePackages struct{ *store }

func (f fakePackages) ListApproved(context.Context) ([]domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Package{}
	for _, p := range f.packages {
		if p.IsApproved {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePackages) GetByID(_ context.Context, id string) (*domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.packages {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("package", id)
}

func (f fakePackages) ListBySeller(_ context.Context, sellerID string) ([]domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Package{}
	for _, p := range f.packages {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePackages) GetFeatures(_ context.Context, packageID string) (*domain.PackageFeatures, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	feat, ok := f.features[packageID]
	if !ok {
		return nil, apperrors.NotFound("package features", packageID)
	}
	return &feat, nil
}

type fakeBookings struct{ *store }

func (f fakeBookings) Create(_ context.Context, b *domain.Booking) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.bookings {
		if existing.IdempotencyKey == b.IdempotencyKey {
			*b = existing
			return false, nil
		}
	}
	f.bookings = append(f.bookings, *b)
	return true, nil
}

func (f fakeBookings) record(b domain.Booking) domain.BookingRecord {
	rec := domain.BookingRecord{Booking: b}
	for _, p := range f.packages {
		if p.ID == b.PackageID {
			rec.Package = domain.One(domain.PackageRef{ID: p.ID, Title: p.Title, Price: p.Price, Discount: p.Discount, SellerID: p.SellerID})
		}
	}
	if prof, ok := f.profiles[b.UserID]; ok {
		rec.Buyer = domain.Many([]domain.ProfileRef{{ID: prof.ID, Name: prof.Name, Email: prof.Email, UserName: prof.UserName}})
	}
	return rec
}

func (f fakeBookings) GetByID(_ context.Context, id string) (*domain.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			rec := f.record(b)
			return &rec, nil
		}
	}
	return nil, apperrors.NotFound("booking", id)
}

func (f fakeBookings) list(keep func(domain.BookingRecord) bool) []domain.BookingRecord {
	out := []domain.BookingRecord{}
	for _, b := range slices.Backward(f.bookings) {
		if rec := f.record(b); keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (f fakeBookings) ListBySeller(_ context.Context, sellerID string) ([]domain.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(rec domain.BookingRecord) bool {
		p, ok := rec.Package.First()
		return ok && p.SellerID == sellerID
	}), nil
}

func (f fakeBookings) ListByUser(_ context.Context, userID string) ([]domain.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(rec domain.BookingRecord) bool { return rec.UserID == userID }), nil
}

type fakeReviews struct{ *store }

func (f fakeReviews) Create(_ context.Context, r *domain.Review) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reviews {
		if existing.IdempotencyKey == r.IdempotencyKey {
			*r = existing
			return false, nil
		}
	}
	f.reviews = append(f.reviews, *r)
	return true, nil
}

func (f fakeReviews) ListByPackage(_ context.Context, packageID string) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Review{}
	for _, r := range f.reviews {
		if r.PackageID == packageID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeReviews) Ratings(_ context.Context, packageID string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []int{}
	for _, r := range f.reviews {
		if r.PackageID == packageID {
			out = append(out, r.Rating)
		}
	}
	return out, nil
}

type fakeProfiles struct{ *store }

func (f fakeProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperrors.NotFound("profile", id)
	}
	return &p, nil
}

func (f fakeProfiles) Upsert(_ context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = *p
	return nil
}

// fakeIdentity accepts the password "correct-horse" for every known user.
type fakeIdentity struct {
	mu    sync.Mutex
	users map[string]string
}

func (f *fakeIdentity) SignUp(_ context.Context, in identity.SignUpInput) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[in.Email]; ok {
		return nil, apperrors.Conflict("user already registered")
	}
	id := uuid.New().String()
	f.users[in.Email] = id
	return &identity.User{ID: id, Email: in.Email}, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.users[email]
	if !ok || password != "correct-horse" {
		return nil, apperrors.Unauthorized("invalid login credentials")
	}
	return &identity.User{ID: id, Email: email}, nil
}
