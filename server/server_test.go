package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"asp-server/confs"
	"asp-server/db"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	cfg := &confs.Config{
		Port:      "0",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
	return NewServer(&db.GormDatabase{DB: gdb}, cfg).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonData)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var result map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &result)
	}
	return w, result
}

func registerAndLogin(t *testing.T, router *gin.Engine, fullName, username, email, password string) (userID, token string) {
	t.Helper()

	w, _ := doJSON(t, router, "POST", "/auth/register", "", map[string]string{
		"fullname": fullName,
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, result := doJSON(t, router, "POST", "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, _ = result["token"].(string)
	user, _ := result["user"].(map[string]interface{})
	userID, _ = user["id"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, userID)
	return userID, token
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w, result := doJSON(t, router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", result["status"])
}

func TestRegisterValidationAndConflict(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, "POST", "/auth/register", "", map[string]string{
		"username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, "POST", "/auth/register", "", map[string]string{
		"fullname": "Alice Smith", "username": "alice", "email": "alice@example.com", "password": "pw123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, "POST", "/auth/register", "", map[string]string{
		"fullname": "Other Alice", "username": "alice", "email": "other@example.com", "password": "pw456",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPasswordHashNeverReturned(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, "POST", "/auth/register", "", map[string]string{
		"fullname": "Alice Smith", "username": "alice", "email": "alice@example.com", "password": "pw123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "pw123")
	assert.NotContains(t, w.Body.String(), "password_hash")

	w, _ = doJSON(t, router, "POST", "/auth/login", "", map[string]string{
		"username": "alice", "password": "pw123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "pw123")
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestLoginFailures(t *testing.T) {
	router := newTestRouter(t)
	registerAndLogin(t, router, "Alice Smith", "alice", "alice@example.com", "pw123")

	w, _ := doJSON(t, router, "POST", "/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, "POST", "/auth/login", "", map[string]string{
		"username": "nobody", "password": "pw123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestControlRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, "POST", "/control/add-room/some-user", "", map[string]string{"roomTitle": "Kitchen"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, "GET", "/auth/profile/some-user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// The full happy path: register alice, add "Kitchen", add "Lamp"
// (off), switch it on, read it back.
func TestKitchenLampScenario(t *testing.T) {
	router := newTestRouter(t)
	aliceID, aliceToken := registerAndLogin(t, router, "Alice Smith", "alice", "alice@example.com", "pw123")

	w, result := doJSON(t, router, "POST", "/control/add-room/"+aliceID, aliceToken, map[string]string{"roomTitle": "Kitchen"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	room := result["room"].(map[string]interface{})
	roomID := room["id"].(string)

	w, result = doJSON(t, router, "POST", "/control/add-asp/"+aliceID+"/"+roomID, aliceToken, map[string]string{
		"deviceName": "Lamp", "state": "off",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	asp := result["asp"].(map[string]interface{})
	aspID := asp["id"].(string)

	path := aliceID + "/" + roomID + "/" + aspID
	w, _ = doJSON(t, router, "POST", "/control/update-asp-state/"+path, aliceToken, map[string]string{"state": "on"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, result = doJSON(t, router, "GET", "/control/read-asp-state/"+path, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "on", result["state"])

	w, result = doJSON(t, router, "GET", "/control/get-rooms-with-asps/"+aliceID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rooms := result["roomsWithASPs"].([]interface{})
	require.Len(t, rooms, 1)

	w, result = doJSON(t, router, "GET", "/control/get-devices/"+aliceID+"/"+roomID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	devices := result["devices"].([]interface{})
	require.Len(t, devices, 1)
}

// Bob attempting to flip Alice's Lamp gets 403, whichever way he
// addresses it.
func TestCrossUserAccessForbidden(t *testing.T) {
	router := newTestRouter(t)
	aliceID, aliceToken := registerAndLogin(t, router, "Alice Smith", "alice", "alice@example.com", "pw123")
	bobID, bobToken := registerAndLogin(t, router, "Bob Jones", "bob", "bob@example.com", "pw456")

	w, result := doJSON(t, router, "POST", "/control/add-room/"+aliceID, aliceToken, map[string]string{"roomTitle": "Kitchen"})
	require.Equal(t, http.StatusOK, w.Code)
	roomID := result["room"].(map[string]interface{})["id"].(string)

	w, result = doJSON(t, router, "POST", "/control/add-asp/"+aliceID+"/"+roomID, aliceToken, map[string]string{"deviceName": "Lamp"})
	require.Equal(t, http.StatusOK, w.Code)
	aspID := result["asp"].(map[string]interface{})["id"].(string)

	// Bob using Alice's user id in the path
	w, _ = doJSON(t, router, "POST", "/control/update-asp-state/"+aliceID+"/"+roomID+"/"+aspID, bobToken, map[string]string{"state": "on"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Bob using his own user id but Alice's room
	w, _ = doJSON(t, router, "POST", "/control/update-asp-state/"+bobID+"/"+roomID+"/"+aspID, bobToken, map[string]string{"state": "on"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The lamp stayed off
	w, result = doJSON(t, router, "GET", "/control/read-asp-state/"+aliceID+"/"+roomID+"/"+aspID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "off", result["state"])
}

func TestDeleteRoomCascadesOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	aliceID, aliceToken := registerAndLogin(t, router, "Alice Smith", "alice", "alice@example.com", "pw123")

	w, result := doJSON(t, router, "POST", "/control/add-room/"+aliceID, aliceToken, map[string]string{"roomTitle": "Kitchen"})
	require.Equal(t, http.StatusOK, w.Code)
	roomID := result["room"].(map[string]interface{})["id"].(string)

	w, result = doJSON(t, router, "POST", "/control/add-asp/"+aliceID+"/"+roomID, aliceToken, map[string]string{"deviceName": "Lamp"})
	require.Equal(t, http.StatusOK, w.Code)
	aspID := result["asp"].(map[string]interface{})["id"].(string)

	w, _ = doJSON(t, router, "DELETE", "/control/delete-room/"+aliceID+"/"+roomID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, "GET", "/control/read-asp-state/"+aliceID+"/"+roomID+"/"+aspID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, result = doJSON(t, router, "GET", "/control/get-rooms-with-asps/"+aliceID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, result["roomsWithASPs"])
}

func TestLogoutRevokesTokenOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	aliceID, aliceToken := registerAndLogin(t, router, "Alice Smith", "alice", "alice@example.com", "pw123")

	w, _ := doJSON(t, router, "GET", "/auth/profile/"+aliceID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, "GET", "/auth/logout", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, "GET", "/auth/profile/"+aliceID, aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRenameEndpoints(t *testing.T) {
	router := newTestRouter(t)
	aliceID, aliceToken := registerAndLogin(t, router, "Alice Smith", "alice", "alice@example.com", "pw123")

	w, result := doJSON(t, router, "POST", "/control/add-room/"+aliceID, aliceToken, map[string]string{"roomTitle": "Kitchen"})
	require.Equal(t, http.StatusOK, w.Code)
	roomID := result["room"].(map[string]interface{})["id"].(string)

	w, result = doJSON(t, router, "POST", "/control/add-asp/"+aliceID+"/"+roomID, aliceToken, map[string]string{"deviceName": "Lamp"})
	require.Equal(t, http.StatusOK, w.Code)
	aspID := result["asp"].(map[string]interface{})["id"].(string)

	w, _ = doJSON(t, router, "PUT", "/control/update-room-title/"+aliceID+"/"+roomID, aliceToken, map[string]string{"roomTitle": "Pantry"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, "PUT", "/control/update-device-name/"+aliceID+"/"+roomID+"/"+aspID, aliceToken, map[string]string{"deviceName": "Ceiling Lamp"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, result = doJSON(t, router, "GET", "/control/get-devices/"+aliceID+"/"+roomID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	devices := result["devices"].([]interface{})
	require.Len(t, devices, 1)
	assert.Equal(t, "Ceiling Lamp", devices[0].(map[string]interface{})["device_name"])
}

func TestWebSocketStatePushAndReport(t *testing.T) {
	router := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	aliceID, aliceToken := registerAndLogin(t, router, "Alice Smith", "alice", "alice@example.com", "pw123")

	w, result := doJSON(t, router, "POST", "/control/add-room/"+aliceID, aliceToken, map[string]string{"roomTitle": "Kitchen"})
	require.Equal(t, http.StatusOK, w.Code)
	roomID := result["room"].(map[string]interface{})["id"].(string)

	w, result = doJSON(t, router, "POST", "/control/add-asp/"+aliceID+"/"+roomID, aliceToken, map[string]string{"deviceName": "Lamp"})
	require.Equal(t, http.StatusOK, w.Code)
	aspID := result["asp"].(map[string]interface{})["id"].(string)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?id=" + aspID + "&token=" + aliceToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The connection appears in the owner's listing once registered
	require.Eventually(t, func() bool {
		w, result := doJSON(t, router, "GET", "/control/connected-asps/"+aliceID, aliceToken, nil)
		if w.Code != http.StatusOK {
			return false
		}
		asps, _ := result["asps"].([]interface{})
		return len(asps) == 1
	}, 2*time.Second, 20*time.Millisecond)

	// An owner-side write is pushed to the device
	w, _ = doJSON(t, router, "POST", "/control/update-asp-state/"+aliceID+"/"+roomID+"/"+aspID, aliceToken, map[string]string{"state": "on"})
	require.Equal(t, http.StatusOK, w.Code)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"state"`)
	assert.Contains(t, string(payload), `"on"`)

	// A device-side report is persisted
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state_report","state":"off"}`)))
	require.Eventually(t, func() bool {
		_, result := doJSON(t, router, "GET", "/control/read-asp-state/"+aliceID+"/"+roomID+"/"+aspID, aliceToken, nil)
		return result["state"] == "off"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWebSocketRejectsForeignToken(t *testing.T) {
	router := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	aliceID, aliceToken := registerAndLogin(t, router, "Alice Smith", "alice", "alice@example.com", "pw123")
	_, bobToken := registerAndLogin(t, router, "Bob Jones", "bob", "bob@example.com", "pw456")

	w, result := doJSON(t, router, "POST", "/control/add-room/"+aliceID, aliceToken, map[string]string{"roomTitle": "Kitchen"})
	require.Equal(t, http.StatusOK, w.Code)
	roomID := result["room"].(map[string]interface{})["id"].(string)

	w, result = doJSON(t, router, "POST", "/control/add-asp/"+aliceID+"/"+roomID, aliceToken, map[string]string{"deviceName": "Lamp"})
	require.Equal(t, http.StatusOK, w.Code)
	aspID := result["asp"].(map[string]interface{})["id"].(string)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?id=" + aspID + "&token=" + bobToken
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeleteASPOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	aliceID, aliceToken := registerAndLogin(t, router, "Alice Smith", "alice", "alice@example.com", "pw123")

	w, result := doJSON(t, router, "POST", "/control/add-room/"+aliceID, aliceToken, map[string]string{"roomTitle": "Kitchen"})
	require.Equal(t, http.StatusOK, w.Code)
	roomID := result["room"].(map[string]interface{})["id"].(string)

	w, result = doJSON(t, router, "POST", "/control/add-asp/"+aliceID+"/"+roomID, aliceToken, map[string]string{"deviceName": "Lamp"})
	require.Equal(t, http.StatusOK, w.Code)
	aspID := result["asp"].(map[string]interface{})["id"].(string)

	w, _ = doJSON(t, router, "DELETE", "/control/delete-asp/"+aliceID+"/"+roomID+"/"+aspID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, "DELETE", "/control/delete-asp/"+aliceID+"/"+roomID+"/"+aspID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
