// Package model defines the records and results that flow through a query.
package model

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stored field names of the record collections.
const (
	FieldID            = "_id"
	FieldInviter       = "inviterGcifId"
	FieldInvitee       = "inviteeGcifId"
	FieldFamilyMembers = "familyMembers"
)

// InvitationRecord is one document of the invitationDetails collection.
// String GCIF roles are typed. Every other stored field, including a role
// stored with a non-string type, is kept in Attributes.
type InvitationRecord struct {
	ID         any            `json:"_id,omitempty"`
	InviterID  string         `json:"inviterGcifId"`
	InviteeID  string         `json:"inviteeGcifId"`
	Attributes map[string]any `json:"-"`

	hasInviter bool
	hasInvitee bool
}

// UnmarshalBSON decodes any stored document shape without failing on
// unexpected field types.
func (r *InvitationRecord) UnmarshalBSON(data []byte) error {
	m, err := decodeDocument(data)
	if err != nil {
		return err
	}
	*r = InvitationFromMap(m)
	return nil
}

// Involves reports whether customerID is the inviter or the invitee.
func (r *InvitationRecord) Involves(customerID string) bool {
	return r.InviterID == customerID || r.InviteeID == customerID
}

// FamilyMember is one entry of a family-linking record.
type FamilyMember struct {
	InviterID  string         `json:"inviterGcifId"`
	InviteeID  string         `json:"inviteeGcifId"`
	Attributes map[string]any `json:"-"`

	hasInviter bool
	hasInvitee bool
}

// Involves reports whether customerID holds either role in the entry.
func (m *FamilyMember) Involves(customerID string) bool {
	return m.InviterID == customerID || m.InviteeID == customerID
}

// FamilyLinkingRecord is one document of the familyLinkingDetails collection.
// FamilyMembers holds the member entries used for matching. When the stored
// familyMembers value is not an array of documents it is also kept verbatim
// in Attributes and dumped from there.
type FamilyLinkingRecord struct {
	ID            any            `json:"_id,omitempty"`
	FamilyMembers []FamilyMember `json:"familyMembers"`
	Attributes    map[string]any `json:"-"`

	hasMembers bool
}

// UnmarshalBSON decodes any stored document shape without failing on
// unexpected field types.
func (r *FamilyLinkingRecord) UnmarshalBSON(data []byte) error {
	m, err := decodeDocument(data)
	if err != nil {
		return err
	}
	*r = FamilyLinkingFromMap(m)
	return nil
}

// Involves reports whether any member entry involves customerID.
func (r *FamilyLinkingRecord) Involves(customerID string) bool {
	for i := range r.FamilyMembers {
		if r.FamilyMembers[i].Involves(customerID) {
			return true
		}
	}
	return false
}

// Flatten merges typed fields and attributes into one map so a record
// dumps with exactly its stored fields. Roles are emitted when they were
// stored or set. Attributes win on key clashes.
func (r *InvitationRecord) Flatten() map[string]any {
	out := make(map[string]any, len(r.Attributes)+3)
	if r.ID != nil {
		out[FieldID] = r.ID
	}
	putRole(out, FieldInviter, r.InviterID, r.hasInviter)
	putRole(out, FieldInvitee, r.InviteeID, r.hasInvitee)
	for k, v := range r.Attributes {
		out[k] = v
	}
	return out
}

// Flatten merges typed fields and attributes into one map.
func (m *FamilyMember) Flatten() map[string]any {
	out := make(map[string]any, len(m.Attributes)+2)
	putRole(out, FieldInviter, m.InviterID, m.hasInviter)
	putRole(out, FieldInvitee, m.InviteeID, m.hasInvitee)
	for k, v := range m.Attributes {
		out[k] = v
	}
	return out
}

// Flatten merges typed fields, members and attributes into one map.
// familyMembers is omitted when the document had none.
func (r *FamilyLinkingRecord) Flatten() map[string]any {
	out := make(map[string]any, len(r.Attributes)+2)
	if r.ID != nil {
		out[FieldID] = r.ID
	}
	if r.hasMembers || len(r.FamilyMembers) > 0 {
		members := make([]map[string]any, len(r.FamilyMembers))
		for i := range r.FamilyMembers {
			members[i] = r.FamilyMembers[i].Flatten()
		}
		out[FieldFamilyMembers] = members
	}
	for k, v := range r.Attributes {
		out[k] = v
	}
	return out
}

func putRole(out map[string]any, key, value string, stored bool) {
	if stored || value != "" {
		out[key] = value
	}
}

// InvitationFromMap builds a record from a decoded JSON or BSON object.
func InvitationFromMap(m map[string]any) InvitationRecord {
	r := InvitationRecord{Attributes: map[string]any{}}
	for k, v := range m {
		switch k {
		case FieldID:
			r.ID = v
		case FieldInviter:
			r.InviterID, r.hasInviter = stringField(r.Attributes, k, v)
		case FieldInvitee:
			r.InviteeID, r.hasInvitee = stringField(r.Attributes, k, v)
		default:
			r.Attributes[k] = normalize(v)
		}
	}
	return r
}

// FamilyLinkingFromMap builds a record from a decoded JSON or BSON object.
// A familyMembers array of documents becomes FamilyMembers. Any other shape,
// such as a single embedded document, is kept verbatim in Attributes and its
// documents are still matched.
func FamilyLinkingFromMap(m map[string]any) FamilyLinkingRecord {
	r := FamilyLinkingRecord{Attributes: map[string]any{}}
	for k, v := range m {
		switch k {
		case FieldID:
			r.ID = v
		case FieldFamilyMembers:
			if obj, ok := asMap(v); ok {
				r.FamilyMembers = []FamilyMember{familyMemberFromMap(obj)}
				r.Attributes[k] = normalize(v)
				continue
			}
			items, ok := asSlice(v)
			if !ok {
				r.Attributes[k] = normalize(v)
				continue
			}
			r.FamilyMembers = make([]FamilyMember, 0, len(items))
			allDocs := true
			for _, item := range items {
				obj, ok := asMap(item)
				if !ok {
					allDocs = false
					continue
				}
				r.FamilyMembers = append(r.FamilyMembers, familyMemberFromMap(obj))
			}
			if allDocs {
				r.hasMembers = true
			} else {
				r.Attributes[k] = normalize(v)
			}
		default:
			r.Attributes[k] = normalize(v)
		}
	}
	return r
}

func familyMemberFromMap(m map[string]any) FamilyMember {
	fm := FamilyMember{Attributes: map[string]any{}}
	for k, v := range m {
		switch k {
		case FieldInviter:
			fm.InviterID, fm.hasInviter = stringField(fm.Attributes, k, v)
		case FieldInvitee:
			fm.InviteeID, fm.hasInvitee = stringField(fm.Attributes, k, v)
		default:
			fm.Attributes[k] = normalize(v)
		}
	}
	return fm
}

// stringField returns v when it is a string. Other types stay in attrs
// untouched so they never match a string identifier.
func stringField(attrs map[string]any, key string, v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		attrs[key] = normalize(v)
	}
	return s, ok
}

func decodeDocument(data []byte) (map[string]any, error) {
	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return map[string]any(raw), nil
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case primitive.M:
		return map[string]any(t), true
	case primitive.D:
		return map[string]any(t.Map()), true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case primitive.A:
		return []any(t), true
	}
	return nil, false
}

// normalize converts nested BSON containers to plain maps and slices so
// they dump as JSON objects and arrays.
func normalize(v any) any {
	if m, ok := asMap(v); ok {
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = normalize(e)
		}
		return out
	}
	if items, ok := asSlice(v); ok {
		out := make([]any, len(items))
		for i, e := range items {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}
