package store

import (
	"context"
	"fmt"
	"os"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/pkg/utils/json"
)

// fixtureFile is the on-disk layout: one array per collection.
type fixtureFile struct {
	Invitations []map[string]any `json:"invitationDetails"`
	Families    []map[string]any `json:"familyLinkingDetails"`
}

// FixtureRecordStore serves records from a JSON file, matching them in
// memory with the same OR semantics as the MongoDB filters.
type FixtureRecordStore struct {
	invitations []model.InvitationRecord
	families    []model.FamilyLinkingRecord
}

var _ RecordStore = (*FixtureRecordStore)(nil)

// LoadFixtureRecordStore reads path and keeps the records in file order.
func LoadFixtureRecordStore(path string) (*FixtureRecordStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record fixture: %w", err)
	}

	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse record fixture %s: %w", path, err)
	}

	return NewFixtureRecordStore(f.Invitations, f.Families), nil
}

// NewFixtureRecordStore builds a store from decoded JSON objects.
func NewFixtureRecordStore(invitations, families []map[string]any) *FixtureRecordStore {
	s := &FixtureRecordStore{
		invitations: make([]model.InvitationRecord, 0, len(invitations)),
		families:    make([]model.FamilyLinkingRecord, 0, len(families)),
	}
	for _, m := range invitations {
		s.invitations = append(s.invitations, model.InvitationFromMap(m))
	}
	for _, m := range families {
		s.families = append(s.families, model.FamilyLinkingFromMap(m))
	}
	return s
}

// FindInvitations returns the invitations involving customerID.
func (s *FixtureRecordStore) FindInvitations(ctx context.Context, customerID string) ([]model.InvitationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []model.InvitationRecord{}
	for i := range s.invitations {
		if s.invitations[i].Involves(customerID) {
			out = append(out, s.invitations[i])
		}
	}
	return out, nil
}

// FindFamilyLinks returns the family-linking records involving customerID.
func (s *FixtureRecordStore) FindFamilyLinks(ctx context.Context, customerID string) ([]model.FamilyLinkingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []model.FamilyLinkingRecord{}
	for i := range s.families {
		if s.families[i].Involves(customerID) {
			out = append(out, s.families[i])
		}
	}
	return out, nil
}
