package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kart-io/usrsp-rag/internal/model"
)

// Field paths of the GCIF role fields.
const (
	inviterField       = "inviterGcifId"
	inviteeField       = "inviteeGcifId"
	familyMembersField = "familyMembers"
)

// InvitationFilter matches invitations where customerID is inviter or invitee.
func InvitationFilter(customerID string) bson.M {
	return bson.M{"$or": []bson.M{
		{inviterField: customerID},
		{inviteeField: customerID},
	}}
}

// FamilyLinkFilter matches family-linking records where any member entry
// has customerID as inviter or invitee.
func FamilyLinkFilter(customerID string) bson.M {
	return bson.M{"$or": []bson.M{
		{familyMembersField + "." + inviterField: customerID},
		{familyMembersField + "." + inviteeField: customerID},
	}}
}

// MongoRecordStore reads records from two collections of one database.
type MongoRecordStore struct {
	db          *mongo.Database
	invitations string
	families    string
}

var _ RecordStore = (*MongoRecordStore)(nil)

// NewMongoRecordStore creates a record store over db.
func NewMongoRecordStore(db *mongo.Database, invitationCollection, familyCollection string) *MongoRecordStore {
	return &MongoRecordStore{
		db:          db,
		invitations: invitationCollection,
		families:    familyCollection,
	}
}

// FindInvitations returns every invitation involving customerID.
func (s *MongoRecordStore) FindInvitations(ctx context.Context, customerID string) ([]model.InvitationRecord, error) {
	out := []model.InvitationRecord{}
	if err := findAll(ctx, s.db.Collection(s.invitations), InvitationFilter(customerID), &out); err != nil {
		return nil, fmt.Errorf("find %s: %w", s.invitations, err)
	}
	return out, nil
}

// FindFamilyLinks returns every family-linking record involving customerID.
func (s *MongoRecordStore) FindFamilyLinks(ctx context.Context, customerID string) ([]model.FamilyLinkingRecord, error) {
	out := []model.FamilyLinkingRecord{}
	if err := findAll(ctx, s.db.Collection(s.families), FamilyLinkFilter(customerID), &out); err != nil {
		return nil, fmt.Errorf("find %s: %w", s.families, err)
	}
	return out, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, results any) error {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return err
	}
	// All closes the cursor.
	return cur.All(ctx, results)
}
