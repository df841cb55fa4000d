package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roboclean/ops-sync/internal/docstore"
	"go.uber.org/zap"
)

var ErrUserNotFound = errors.New("user not found")

// Reconciler audits and repairs the drift between auth-layer claims and the
// profile document of a user. Reconcile is read-only; Sync mutates.
type Reconciler struct {
	provider Provider
	docs     docstore.Store
}

func NewReconciler(provider Provider, docs docstore.Store) *Reconciler {
	return &Reconciler{provider: provider, docs: docs}
}

// Reconcile loads both representations and classifies them. A user with
// neither claims nor profile is reported as not found.
func (r *Reconciler) Reconcile(ctx context.Context, userID string) (Result, error) {
	claims, profile, err := r.load(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if claims == nil && profile == nil {
		return Result{}, ErrUserNotFound
	}
	return Compare(userID, claims, profile), nil
}

// Sync pushes one side's values onto the other. Fields present on only one
// side are preserved, never nulled out. For DirectionBoth, auth claims win
// where both sides have a value and profile-only values are copied back.
func (r *Reconciler) Sync(ctx context.Context, userID string, direction Direction) (Result, error) {
	claims, profile, err := r.load(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if claims == nil && profile == nil {
		return Result{}, ErrUserNotFound
	}

	switch direction {
	case DirectionToAuth:
		err = r.pushToAuth(ctx, userID, claims, profile)
	case DirectionToProfile:
		err = r.pushToProfile(ctx, userID, claims, profile)
	case DirectionBoth:
		// Resolve once, then push the same view to both sides. Pushing the
		// raw sides at each other would swap conflicting values instead of
		// converging them.
		merged := mergeClaims(claims, profile)
		if err = r.pushToProfile(ctx, userID, &merged, profile); err == nil {
			err = r.provider.SetClaims(ctx, userID, merged)
		}
	default:
		return Result{}, fmt.Errorf("unknown sync direction %q", direction)
	}
	if err != nil {
		return Result{}, err
	}

	return r.Reconcile(ctx, userID)
}

func (r *Reconciler) load(ctx context.Context, userID string) (*Claims, *Profile, error) {
	claims, err := r.provider.GetClaims(ctx, userID)
	if err != nil && !errors.Is(err, ErrClaimsNotFound) {
		return nil, nil, fmt.Errorf("loading claims for %s: %w", userID, err)
	}

	doc, err := r.docs.Get(ctx, docstore.CollectionUserProfiles, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return claims, nil, nil
		}
		return nil, nil, fmt.Errorf("loading profile for %s: %w", userID, err)
	}

	return claims, profileFromDocument(userID, doc), nil
}

// mergeClaims resolves the two sides into one record: auth claims win where
// both carry a value, profile values fill the gaps.
func mergeClaims(claims *Claims, profile *Profile) Claims {
	merged := Claims{}
	if claims != nil {
		merged = *claims
	}
	if profile != nil {
		if merged.Role == "" {
			merged.Role = profile.Role
		}
		if merged.OrganizationID == "" {
			merged.OrganizationID = profile.OrganizationID
		}
		if merged.TeleoperatorID == "" {
			merged.TeleoperatorID = profile.TeleoperatorID
		}
	}
	return merged
}

func (r *Reconciler) pushToAuth(ctx context.Context, userID string, claims *Claims, profile *Profile) error {
	if profile == nil {
		return nil
	}

	merged := Claims{}
	if claims != nil {
		merged = *claims
	}
	if profile.Role != "" {
		merged.Role = profile.Role
	}
	if profile.OrganizationID != "" {
		merged.OrganizationID = profile.OrganizationID
	}
	if profile.TeleoperatorID != "" {
		merged.TeleoperatorID = profile.TeleoperatorID
	}

	zap.S().Named("identity").Infof("pushing profile values onto auth claims for user %s", userID)
	return r.provider.SetClaims(ctx, userID, merged)
}

func (r *Reconciler) pushToProfile(ctx context.Context, userID string, claims *Claims, profile *Profile) error {
	if claims == nil {
		return nil
	}

	// Partial update: only the fields the claims side actually carries, so
	// profile-only fields (displayName, email) survive untouched.
	fields := docstore.Document{"updatedAt": time.Now().UTC()}
	if claims.Role != "" {
		fields["role"] = claims.Role
	}
	if claims.OrganizationID != "" {
		fields["organizationId"] = claims.OrganizationID
	}
	if claims.TeleoperatorID != "" {
		fields["teleoperatorId"] = claims.TeleoperatorID
	}

	zap.S().Named("identity").Infof("pushing auth claims onto profile for user %s", userID)
	if profile == nil {
		fields["id"] = userID
		fields["createdAt"] = time.Now().UTC()
		return r.docs.Insert(ctx, docstore.CollectionUserProfiles, fields)
	}
	return r.docs.Update(ctx, docstore.CollectionUserProfiles, userID, fields)
}

func profileFromDocument(userID string, doc docstore.Document) *Profile {
	str := func(key string) string {
		if v, ok := doc[key].(string); ok {
			return v
		}
		return ""
	}

	profile := &Profile{
		UserID:         userID,
		Role:           str("role"),
		OrganizationID: str("organizationId"),
		TeleoperatorID: str("teleoperatorId"),
		DisplayName:    str("displayName"),
		Email:          str("email"),
	}
	if ts, ok := docstore.NormalizeTime(doc["createdAt"]); ok {
		profile.CreatedAt = ts
	}
	if ts, ok := docstore.NormalizeTime(doc["updatedAt"]); ok {
		profile.UpdatedAt = ts
	}
	return profile
}
