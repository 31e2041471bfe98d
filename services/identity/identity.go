package identity

import (
	"context"
	"errors"
	"sync"

	"cargo-portal/constants"
	userModel "cargo-portal/models/user"
	"cargo-portal/types"

	"gorm.io/gorm"
)

// Identity is the resolved form of a session reference. It is passed
// explicitly through the store adapter, policy and notifier; no component
// reads a current-user global.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Role        string
	CompanyID   *uint
}

// IsAdmin reports whether the identity holds the admin role.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == constants.RoleAdmin
}

// IsCompanyUser reports whether the identity is scoped to one company.
func (id *Identity) IsCompanyUser() bool {
	return id != nil && id.Role == constants.RoleCompanyUser
}

// SameScope reports whether two identities see the same shipment slice.
// A company change while connected means the subscription scope changed.
func (id *Identity) SameScope(other *Identity) bool {
	if id == nil || other == nil {
		return id == other
	}
	if id.UID != other.UID || id.Role != other.Role {
		return false
	}
	if (id.CompanyID == nil) != (other.CompanyID == nil) {
		return false
	}
	return id.CompanyID == nil || *id.CompanyID == *other.CompanyID
}

// UserSource loads user records for identity resolution.
type UserSource interface {
	FindByUUID(ctx context.Context, uuid string) (*userModel.User, error)
}

// GormUserSource resolves users from the database.
type GormUserSource struct {
	DB *gorm.DB
}

func (s *GormUserSource) FindByUUID(ctx context.Context, uuid string) (*userModel.User, error) {
	var u userModel.User
	err := s.DB.WithContext(ctx).Where("uuid = ?", uuid).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Resolver turns a stored session reference (uid) into an Identity. The
// user row is the source of truth; the snapshot kept here is only a cache
// of the last successful resolve and is never served authoritatively.
type Resolver struct {
	source UserSource

	mu        sync.RWMutex
	snapshots map[string]*Identity
}

// NewResolver creates a resolver over the given user source.
func NewResolver(source UserSource) *Resolver {
	return &Resolver{
		source:    source,
		snapshots: make(map[string]*Identity),
	}
}

// Resolve fetches the current user record for uid, verifies it is active
// and produces the identity. Deactivated accounts resolve to ErrInactive,
// missing accounts to ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, uid string) (*Identity, error) {
	u, err := r.source.FindByUUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, types.ErrInactive
	}

	id := &Identity{
		UID:         u.Uuid,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
	}

	r.mu.Lock()
	r.snapshots[uid] = id
	r.mu.Unlock()

	return id, nil
}

// Refresh re-resolves an identity so admin-side deactivation or company
// reassignment is observed without re-login.
func (r *Resolver) Refresh(ctx context.Context, id *Identity) (*Identity, error) {
	if id == nil {
		return nil, types.ErrNotFound
	}
	return r.Resolve(ctx, id.UID)
}

// Snapshot returns the last resolved identity for uid, or nil. It is a
// non-authoritative cache; callers needing current truth use Resolve.
func (r *Resolver) Snapshot(uid string) *Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshots[uid]
}

// Forget drops the cached snapshot for uid (logout).
func (r *Resolver) Forget(uid string) {
	r.mu.Lock()
	delete(r.snapshots, uid)
	r.mu.Unlock()
}
