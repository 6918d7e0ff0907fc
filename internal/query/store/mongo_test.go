package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kart-io/usrsp-rag/internal/query/store"
)

func TestInvitationFilter(t *testing.T) {
	assert.Equal(t, bson.M{"$or": []bson.M{
		{"inviterGcifId": "C123"},
		{"inviteeGcifId": "C123"},
	}}, store.InvitationFilter("C123"))
}

func TestFamilyLinkFilter(t *testing.T) {
	assert.Equal(t, bson.M{"$or": []bson.M{
		{"familyMembers.inviterGcifId": "C123"},
		{"familyMembers.inviteeGcifId": "C123"},
	}}, store.FamilyLinkFilter("C123"))
}

func TestFilterBindsIdentifierAsValue(t *testing.T) {
	id := `{"$ne": null}`
	f := store.InvitationFilter(id)
	or := f["$or"].([]bson.M)
	assert.Equal(t, id, or[0]["inviterGcifId"])
}

// TestMongoRecordStore runs against a live server when MONGODB_TEST_URI is set.
func TestMongoRecordStore(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(context.Background()) }()
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongodb unreachable: %v", err)
	}

	db := client.Database("usrsp_rag_test_" + time.Now().Format("150405"))
	defer func() { _ = db.Drop(context.Background()) }()

	_, err = db.Collection("invitationDetails").InsertMany(ctx, []any{
		bson.M{"inviterGcifId": "C123", "inviteeGcifId": "C999", "status": "sent"},
		bson.M{"inviterGcifId": "C555", "inviteeGcifId": "C123"},
		bson.M{"inviterGcifId": "C555", "inviteeGcifId": "C777"},
	})
	require.NoError(t, err)
	_, err = db.Collection("familyLinkingDetails").InsertOne(ctx, bson.M{
		"familyMembers": bson.A{bson.M{"inviterGcifId": "C777", "inviteeGcifId": "C123"}},
	})
	require.NoError(t, err)

	s := store.NewMongoRecordStore(db, "invitationDetails", "familyLinkingDetails")

	inv, err := s.FindInvitations(ctx, "C123")
	require.NoError(t, err)
	assert.Len(t, inv, 2)

	fam, err := s.FindFamilyLinks(ctx, "C123")
	require.NoError(t, err)
	require.Len(t, fam, 1)
	assert.True(t, fam[0].Involves("C123"))

	none, err := s.FindInvitations(ctx, "C000")
	require.NoError(t, err)
	assert.Empty(t, none)
}
