package households

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"household-backend/internal/domain"
	"household-backend/internal/pkg/apperrors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Service implements the household lifecycle: creation, visibility-scoped
// reads, invitations and membership. Every operation takes the resolved
// caller identity explicitly; authorization is enforced here, not in the
// router.
type Service struct {
	DB *gorm.DB
}

// WritableHousehold carries the client-writable household fields.
type WritableHousehold struct {
	Name string `json:"name"`
}

// CreateHouseholdInput optionally carries a batch of invitees to create
// together with the household.
type CreateHouseholdInput struct {
	Name   string   `json:"name"`
	Invite []string `json:"invite"`
}

// memberOf scopes a query to households the user belongs to. The creator is
// always a member, so this covers both created and joined households.
func (s *Service) memberOf(user string) *gorm.DB {
	return s.DB.Model(&domain.HouseholdMember{}).Select("household_id").Where("user_id = ?", user)
}

// CreateHousehold inserts the household and its creator membership as a unit.
// When in.Invite is non-empty the invitation rows join the same transaction,
// so a failed invite rolls the household back too.
func (s *Service) CreateHousehold(ctx context.Context, user string, in CreateHouseholdInput) (*domain.Household, error) {
	hh := &domain.Household{Name: in.Name, CreatedBy: user}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(hh).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.DuplicateEntity(fmt.Sprintf("Household with name %s already exists", in.Name))
			}
			return err
		}
		member := &domain.HouseholdMember{HouseholdID: hh.ID, UserID: user}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		if len(in.Invite) > 0 {
			if _, err := insertInvitations(tx, hh, user, in.Invite); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, hh)
}

// GetHousehold fetches a household the caller belongs to, enriched with
// members and pending invitations. Invisible and absent households are
// indistinguishable: both report not found.
func (s *Service) GetHousehold(ctx context.Context, user string, id int64) (*domain.Household, error) {
	hh, err := s.getVisible(ctx, user, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, hh)
}

func (s *Service) getVisible(ctx context.Context, user string, id int64) (*domain.Household, error) {
	var hh domain.Household
	err := s.DB.WithContext(ctx).
		Where("id = ? AND id IN (?)", id, s.memberOf(user)).
		First(&hh).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound(fmt.Sprintf("Household with id %d not found", id))
	}
	if err != nil {
		return nil, err
	}
	return &hh, nil
}

// GetUserHouseholds returns every household the caller created or joined,
// most recently created first.
func (s *Service) GetUserHouseholds(ctx context.Context, user string) ([]*domain.Household, error) {
	var list []*domain.Household
	err := s.DB.WithContext(ctx).
		Where("id IN (?)", s.memberOf(user)).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	for _, hh := range list {
		if _, err := s.enrich(ctx, hh); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpdateHousehold renames a household. Non-creators get not found rather than
// forbidden so existence is not leaked through the error channel.
func (s *Service) UpdateHousehold(ctx context.Context, user string, id int64, patch WritableHousehold) (*domain.Household, error) {
	hh, err := s.getVisible(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if hh.CreatedBy != user {
		return nil, apperrors.NotFound(fmt.Sprintf("Household with id %d not found", id))
	}

	hh.Name = patch.Name
	if err := s.DB.WithContext(ctx).Model(hh).Update("name", patch.Name).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.DuplicateEntity(fmt.Sprintf("Household with name %s already exists", patch.Name))
		}
		return nil, err
	}
	return s.enrich(ctx, hh)
}

// DeleteHousehold deletes the household when the caller created it; members
// and invitations go with it via the store's cascade. A non-creator call is a
// silent no-op so strangers cannot probe for existence.
func (s *Service) DeleteHousehold(ctx context.Context, user string, id int64) error {
	return s.DB.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, user).
		Delete(&domain.Household{}).Error
}

// InviteUsers creates one pending invitation per identity, all or nothing.
// Only the creator may invite; other members get not found like
// UpdateHousehold so membership is not probeable. Inviting the creator fails
// the whole batch before any row is written.
func (s *Service) InviteUsers(ctx context.Context, user string, householdID int64, identities []string) ([]domain.HouseholdInvitation, error) {
	hh, err := s.getVisible(ctx, user, householdID)
	if err != nil {
		return nil, err
	}
	if hh.CreatedBy != user {
		return nil, apperrors.NotFound(fmt.Sprintf("Household with id %d not found", householdID))
	}

	var created []domain.HouseholdInvitation
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		created, txErr = insertInvitations(tx, hh, user, identities)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func insertInvitations(tx *gorm.DB, hh *domain.Household, invitedBy string, identities []string) ([]domain.HouseholdInvitation, error) {
	for _, identity := range identities {
		if identity == hh.CreatedBy {
			return nil, apperrors.InvitedUserIsOwner()
		}
	}
	created := make([]domain.HouseholdInvitation, 0, len(identities))
	for _, identity := range identities {
		inv := domain.HouseholdInvitation{
			HouseholdID:     hh.ID,
			InvitedUser:     identity,
			InvitedByUserID: invitedBy,
		}
		if err := tx.Create(&inv).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, apperrors.DuplicateEntity("User already invited")
			}
			return nil, err
		}
		created = append(created, inv)
	}
	return created, nil
}

// DeleteInvitation withdraws a pending invitation. Only the household creator
// and the invitee may do so; anyone else (or a missing id) is a silent no-op,
// matching DeleteHousehold's semantics.
func (s *Service) DeleteInvitation(ctx context.Context, user string, invitationID int64) error {
	inv, hh, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv == nil {
		return nil
	}
	if user != inv.InvitedUser && user != hh.CreatedBy {
		return nil
	}
	return s.DB.WithContext(ctx).Delete(&domain.HouseholdInvitation{}, inv.ID).Error
}

// AcceptInvitation converts a pending invitation into a membership. The
// membership insert and invitation delete commit together; a failure of
// either leaves both untouched.
func (s *Service) AcceptInvitation(ctx context.Context, user string, invitationID int64) error {
	inv, hh, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	// Visible to the invitee and the creator only; everyone else gets the
	// same not-found as a missing id.
	if inv == nil || (user != inv.InvitedUser && user != hh.CreatedBy) {
		return apperrors.NotFound(fmt.Sprintf("Invitation with id %d not found", invitationID))
	}
	if user != inv.InvitedUser {
		return apperrors.Forbidden("This invitation is not for you")
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := &domain.HouseholdMember{HouseholdID: inv.HouseholdID, UserID: user}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.HouseholdInvitation{}, inv.ID).Error
	})
}

// RemoveMember deletes a membership row. The creator may remove anyone but
// themself; a member may remove themself; the creator's own row is permanent.
func (s *Service) RemoveMember(ctx context.Context, user string, householdID, memberID int64) error {
	hh, err := s.getVisible(ctx, user, householdID)
	if err != nil {
		return err
	}

	var member domain.HouseholdMember
	err = s.DB.WithContext(ctx).
		Where("id = ? AND household_id = ?", memberID, householdID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(fmt.Sprintf("Member with id %d not found", memberID))
	}
	if err != nil {
		return err
	}

	if member.UserID == hh.CreatedBy {
		return apperrors.Forbidden("The household owner cannot be removed")
	}
	if user != hh.CreatedBy && user != member.UserID {
		return apperrors.Forbidden("Only the household owner or the member themself can remove a member")
	}
	return s.DB.WithContext(ctx).Delete(&domain.HouseholdMember{}, member.ID).Error
}

func (s *Service) getInvitation(ctx context.Context, invitationID int64) (*domain.HouseholdInvitation, *domain.Household, error) {
	var inv domain.HouseholdInvitation
	err := s.DB.WithContext(ctx).First(&inv, invitationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	var hh domain.Household
	if err := s.DB.WithContext(ctx).First(&hh, inv.HouseholdID).Error; err != nil {
		return nil, nil, err
	}
	return &inv, &hh, nil
}

// enrich loads members and pending invitations onto hh. The two reads are
// independent and run in parallel.
func (s *Service) enrich(ctx context.Context, hh *domain.Household) (*domain.Household, error) {
	members := []domain.HouseholdMember{}
	invites := []domain.HouseholdInvitation{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.DB.WithContext(gctx).Where("household_id = ?", hh.ID).Find(&members).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).Where("household_id = ?", hh.ID).Find(&invites).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hh.Members = members
	hh.PendingInvites = invites
	return hh, nil
}

// isUniqueViolation matches translated and raw unique-constraint errors
// (gorm translation, Postgres 23505, sqlite in tests).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint")
}
