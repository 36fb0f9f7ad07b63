package proxy

import (
	"context"

	"journey-chat/internal/domain/room"
	"journey-chat/internal/repository"

	"go.uber.org/zap"
)

// GeoFence decides whether a user may enter a location room. It is not set
// by default, which leaves location rooms open to everyone.
type GeoFence func(ctx context.Context, userID string, at room.Coordinates) bool

// AccessControl decides who may join and act in a room. Any failure to
// decide is a denial.
type AccessControl struct {
	journeyRepo repository.JourneyRepository
	logger      *zap.Logger

	GeoFence GeoFence
}

func NewAccessControl(journeyRepo repository.JourneyRepository, logger *zap.Logger) *AccessControl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessControl{journeyRepo: journeyRepo, logger: logger}
}

// CanAccess reports whether userID may join roomID. category is what the
// client claims the room to be and must match the category encoded in the id.
func (a *AccessControl) CanAccess(ctx context.Context, userID, roomID string, category room.Category) bool {
	if userID == "" || !category.Valid() {
		return false
	}
	ref, err := room.Parse(roomID)
	if err != nil || ref.Category != category {
		return false
	}

	switch ref.Category {
	case room.CategoryGroupPlanning:
		return a.isJourneyMember(ctx, userID, ref.GroupPlanning.JourneyID)
	case room.CategoryLocationChat:
		if a.GeoFence != nil {
			return a.GeoFence(ctx, userID, ref.Location.Coordinates)
		}
		return true
	case room.CategoryQAChat:
		if ref.QA.AskerID == userID {
			return true
		}
		return a.isJourneyCreator(ctx, userID, ref.QA.JourneyID)
	case room.CategoryDirect:
		return ref.Direct.HasParticipant(userID)
	}
	return false
}

// CanAccessRoom is CanAccess with the category taken from the id itself.
func (a *AccessControl) CanAccessRoom(ctx context.Context, userID, roomID string) bool {
	return a.CanAccess(ctx, userID, roomID, room.CategoryOf(roomID))
}

func (a *AccessControl) isJourneyMember(ctx context.Context, userID, journeyID string) bool {
	if a.journeyRepo == nil {
		return false
	}
	j, err := a.journeyRepo.GetByID(ctx, journeyID)
	if err != nil {
		a.logger.Debug("journey lookup failed", zap.String("journey_id", journeyID), zap.Error(err))
		return false
	}
	return j.IsMember(userID)
}

func (a *AccessControl) isJourneyCreator(ctx context.Context, userID, journeyID string) bool {
	if a.journeyRepo == nil {
		return false
	}
	j, err := a.journeyRepo.GetByID(ctx, journeyID)
	if err != nil {
		a.logger.Debug("journey lookup failed", zap.String("journey_id", journeyID), zap.Error(err))
		return false
	}
	return j.IsCreator(userID)
}
