package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    ID
		wantErr bool
	}{
		{name: "object id", in: `"665f1c2ab1e4d3a9c0a1b2c3"`, want: "665f1c2ab1e4d3a9c0a1b2c3"},
		{name: "legacy integer", in: `42`, want: "42"},
		{name: "numeric string", in: `"42"`, want: "42"},
		{name: "null", in: `null`, want: ""},
		{name: "fraction", in: `4.5`, wantErr: true},
		{name: "object", in: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestID_NumberAndStringCompareEqual(t *testing.T) {
	var fromNumber, fromString struct {
		ID ID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id": 7}`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`{"id": "7"}`), &fromString))

	assert.Equal(t, fromNumber.ID, fromString.ID)
}

func TestParseTimestamp(t *testing.T) {
	naive, err := ParseTimestamp("2024-05-01T12:34:56.123456")
	require.NoError(t, err)
	assert.Equal(t, time.Local, naive.Location())
	assert.Equal(t, 2024, naive.Year())
	assert.Equal(t, 123456000, naive.Nanosecond())

	zoned, err := ParseTimestamp("2024-05-01T12:34:56Z")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, zoned.Location())

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_UnknownFormsDecodeToZero(t *testing.T) {
	var list []Incident
	payload := `[
		{"id":"a1","created_at":"2024-05-01T10:00:00"},
		{"id":"a2","created_at":"2024-05-01"},
		{"id":"a3","created_at":"last tuesday"},
		{"id":"a4","created_at":12345}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &list))
	require.Len(t, list, 4)

	assert.Equal(t, 10, list[0].CreatedAt.Hour())
	assert.Equal(t, time.May, list[1].CreatedAt.Month())
	assert.Equal(t, 1, list[1].CreatedAt.Day())
	assert.True(t, list[2].CreatedAt.IsZero())
	assert.True(t, list[3].CreatedAt.IsZero())
}

func TestTimestamp_JSONNullAndEmpty(t *testing.T) {
	var v struct {
		A Timestamp `json:"a"`
		B Timestamp `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": null, "b": ""}`), &v))
	assert.True(t, v.A.IsZero())
	assert.True(t, v.B.IsZero())
}

func TestUser_RoleNormalization(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantAdmin bool
	}{
		{"role admin", `{"role":"admin","is_admin":false}`, true},
		{"is_admin flag", `{"role":"user","is_admin":true}`, true},
		{"both", `{"role":"admin","is_admin":true}`, true},
		{"plain user", `{"role":"user","is_admin":false}`, false},
		{"missing fields", `{}`, false},
		{"uppercase role", `{"role":"ADMIN"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &u))

			assert.Equal(t, tt.wantAdmin, u.Admin())
			assert.Equal(t, tt.wantAdmin, u.IsAdmin)
			if tt.wantAdmin {
				assert.Equal(t, RoleAdmin, u.Role)
			} else {
				assert.Equal(t, RoleUser, u.Role)
			}
		})
	}
}

func TestUser_NormalizedInsideAuthResponse(t *testing.T) {
	var resp AuthResponse
	payload := `{"token":"t","user":{"id":"u1","name":"Ann","is_admin":true,"created_at":"2024-01-02T03:04:05"},"linked_incidents":2}`
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	require.NotNil(t, resp.User)
	assert.True(t, resp.User.Admin())
	assert.Equal(t, 2, resp.LinkedIncidents)
	assert.Equal(t, 2024, resp.User.CreatedAt.Year())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("root")
	assert.Error(t, err)
}

func TestIncident_Ownership(t *testing.T) {
	owner := &User{ID: "u1"}
	other := &User{ID: "u2"}

	var inc Incident
	require.NoError(t, json.Unmarshal([]byte(`{"id":"i1","user_id":"u1","user_name":"Ann"}`), &inc))

	assert.True(t, inc.OwnedBy(owner))
	assert.False(t, inc.OwnedBy(other))
	assert.False(t, inc.OwnedBy(nil))
	assert.False(t, inc.Anonymous())
	assert.Equal(t, "Ann", inc.Reporter())

	anon := Incident{ID: "i2", ReporterName: "Kofi", IsAnonymous: true}
	assert.True(t, anon.Anonymous())
	assert.False(t, anon.OwnedBy(&User{}), "empty ids never match")
	assert.Equal(t, "Kofi", anon.Reporter())
	assert.Equal(t, "Anonymous", Incident{}.Reporter())
}

func TestIncident_LegacyOwnerMatchesStringUser(t *testing.T) {
	var inc Incident
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"user_id":17,"media_url":null}`), &inc))

	assert.Equal(t, ID("3"), inc.ID)
	assert.True(t, inc.OwnedBy(&User{ID: "17"}))
	assert.Empty(t, inc.MediaURL)
}

func TestParseIncidentTypeAndStatus(t *testing.T) {
	typ, err := ParseIncidentType("RedFlag")
	require.NoError(t, err)
	assert.Equal(t, TypeRedFlag, typ)
	assert.Equal(t, "Red Flag", typ.Label())

	_, err = ParseIncidentType("complaint")
	assert.Error(t, err)

	st, err := ParseStatus("investigating")
	require.NoError(t, err)
	assert.Equal(t, StatusInvestigating, st)

	_, err = ParseStatus("closed")
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	assert.Len(t, Categories(TypeRedFlag), 7)
	assert.Len(t, Categories(TypeIntervention), 9)
	assert.Nil(t, Categories("other"))

	assert.True(t, ValidCategory(TypeRedFlag, "bribery"))
	assert.False(t, ValidCategory(TypeIntervention, "bribery"))
	assert.True(t, ValidCategory(TypeIntervention, "other"))

	c := Categories(TypeRedFlag)
	c[0] = "changed"
	assert.Equal(t, "bribery", Categories(TypeRedFlag)[0])
}

func TestNotificationList_Decode(t *testing.T) {
	payload := `{"notifications":[{"id":"n1","message":"m","type":"status_update","incident_id":"i1","read":false,"created_at":"2024-05-01T10:00:00"}],"unread_count":1}`
	var list NotificationList
	require.NoError(t, json.Unmarshal([]byte(payload), &list))

	require.Len(t, list.Notifications, 1)
	assert.Equal(t, ID("i1"), list.Notifications[0].IncidentID)
	assert.Equal(t, NotificationStatusUpdate, list.Notifications[0].Type)
	assert.Equal(t, 1, list.UnreadCount)
}
