package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/testutil"
	"github.com/Sudarsan9786/nool-erp/internal/shared/document"
	"github.com/Sudarsan9786/nool-erp/internal/shared/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*testutil.TestEnv, *sse.Hub) {
	t.Helper()
	hub := sse.NewHub(nil)
	deps := testutil.TestDeps()
	deps.Hub = hub
	env := testutil.SetupServices(t, deps)

	env.Router = testutil.SetupRouter()
	NewHandlers(env.Services, hub).RegisterRoutes(env.Router.Group("/api/v1"), testutil.JWTSecret)
	return env, hub
}

func TestJobOrderLifecycleAPI(t *testing.T) {
	env, _ := setupHandlerTest(t)
	vendor := testutil.SeedVendor(t, env.DB, "ABC Dyeing Works", "", entity.JobWorkDyeing)
	yarn := testutil.SeedMaterial(t, env.DB, "Cotton Yarn", entity.MaterialTypeYarn, 150, entity.UnitKg)
	staff := testutil.SupervisorToken()

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/job-orders", map[string]interface{}{
		"vendor_id":     vendor.ID,
		"job_work_type": entity.JobWorkDyeing,
		"materials_issued": []map[string]interface{}{
			{"material_id": yarn.ID, "quantity": 100},
		},
		"expected_completion_date": "2030-01-31",
		"service_value":            5000,
	}, staff)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := testutil.ParseResponse(w)
	assert.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]interface{})
	orderID := data["id"].(string)
	assert.True(t, strings.HasPrefix(data["job_order_number"].(string), "JO-"))
	assert.Equal(t, entity.StatusSent, data["status"])
	assert.True(t, strings.HasPrefix(data["expected_completion_date"].(string), "2030-01-31"))
	gst := data["gst_details"].(map[string]interface{})
	assert.Equal(t, entity.GSTIntrastate, gst["gst_type"])

	outsider := testutil.SeedVendor(t, env.DB, "Other Works", "", entity.JobWorkDyeing)
	outsiderToken := testutil.GenerateTestToken("vendor-user-2", entity.RoleVendor, outsider.ID)
	ownerToken := testutil.GenerateTestToken("vendor-user-1", entity.RoleVendor, vendor.ID)

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/job-orders/"+orderID, nil, outsiderToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, testutil.ParseResponse(w)["success"])

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/job-orders/"+orderID, nil, ownerToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/job-orders", nil, outsiderToken)
	require.Equal(t, http.StatusOK, w.Code)
	resp = testutil.ParseResponse(w)
	assert.Empty(t, resp["data"])
	assert.EqualValues(t, 0, resp["pagination"].(map[string]interface{})["total"])

	w = testutil.DoRequest(env.Router, "PUT", "/api/v1/job-orders/"+orderID+"/status",
		map[string]interface{}{"status": entity.StatusInProcess}, ownerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoRequest(env.Router, "PUT", "/api/v1/job-orders/"+orderID+"/status",
		map[string]interface{}{"status": "Shipped"}, staff)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(env.Router, "PUT", "/api/v1/job-orders/"+orderID+"/status",
		map[string]interface{}{"status": entity.StatusInProcess}, staff)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.DoRequest(env.Router, "PUT", "/api/v1/job-orders/"+orderID+"/receive", map[string]interface{}{
		"materials_received": []map[string]interface{}{{"material_id": yarn.ID, "quantity": 92}},
	}, ownerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	report := data["process_loss_report"].(map[string]interface{})
	assert.Equal(t, 8.0, report["overall_loss_percentage"])
	assert.Equal(t, false, report["flag_high_loss"])
	order := data["job_order"].(map[string]interface{})
	assert.Equal(t, entity.StatusPartiallyReturned, order["status"])

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/job-orders/stats", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	stats := testutil.ParseResponse(w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, stats[entity.StatusPartiallyReturned])

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/job-orders/"+orderID+"/challan", nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, document.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "CH-JO-")

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/job-orders/export?status=Partially%20Returned", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, document.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}

func TestJobOrderCreateErrors(t *testing.T) {
	env, _ := setupHandlerTest(t)
	vendor := testutil.SeedVendor(t, env.DB, "ABC Dyeing Works", "", entity.JobWorkDyeing)
	yarn := testutil.SeedMaterial(t, env.DB, "Cotton Yarn", entity.MaterialTypeYarn, 10, entity.UnitKg)
	staff := testutil.SupervisorToken()

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
		msg    string
	}{
		{"missing vendor", map[string]interface{}{
			"vendor_id": "nope", "job_work_type": entity.JobWorkDyeing,
			"materials_issued": []map[string]interface{}{{"material_id": yarn.ID, "quantity": 1}},
		}, http.StatusNotFound, "Vendor not found"},
		{"insufficient", map[string]interface{}{
			"vendor_id": vendor.ID, "job_work_type": entity.JobWorkDyeing,
			"materials_issued": []map[string]interface{}{{"material_id": yarn.ID, "quantity": 11}},
		}, http.StatusBadRequest, "Insufficient quantity"},
		{"unsupported type", map[string]interface{}{
			"vendor_id": vendor.ID, "job_work_type": entity.JobWorkStitching,
			"materials_issued": []map[string]interface{}{{"material_id": yarn.ID, "quantity": 1}},
		}, http.StatusBadRequest, "does not support"},
		{"bad date", map[string]interface{}{
			"vendor_id": vendor.ID, "job_work_type": entity.JobWorkDyeing,
			"materials_issued":         []map[string]interface{}{{"material_id": yarn.ID, "quantity": 1}},
			"expected_completion_date": "31/01/2030",
		}, http.StatusBadRequest, "YYYY-MM-DD or RFC 3339"},
		{"zero quantity", map[string]interface{}{
			"vendor_id": vendor.ID, "job_work_type": entity.JobWorkDyeing,
			"materials_issued": []map[string]interface{}{{"material_id": yarn.ID, "quantity": 0}},
		}, http.StatusBadRequest, "materials_issued[0].quantity must be greater than 0"},
		{"unknown job work type", map[string]interface{}{
			"vendor_id": vendor.ID, "job_work_type": "Weaving",
			"materials_issued": []map[string]interface{}{{"material_id": yarn.ID, "quantity": 1}},
		}, http.StatusBadRequest, "job_work_type must be one of"},
		{"no materials", map[string]interface{}{
			"vendor_id": vendor.ID, "job_work_type": entity.JobWorkDyeing,
		}, http.StatusBadRequest, "materials_issued is required"},
		{"duplicate material", map[string]interface{}{
			"vendor_id": vendor.ID, "job_work_type": entity.JobWorkDyeing,
			"materials_issued": []map[string]interface{}{
				{"material_id": yarn.ID, "quantity": 1}, {"material_id": yarn.ID, "quantity": 2},
			},
		}, http.StatusBadRequest, "must not contain duplicate entries"},
		{"malformed body", map[string]interface{}{
			"vendor_id": vendor.ID, "job_work_type": entity.JobWorkDyeing, "materials_issued": "yarn",
		}, http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoRequest(env.Router, "POST", "/api/v1/job-orders", tt.body, staff)
			assert.Equal(t, tt.status, w.Code)
			resp := testutil.ParseResponse(w)
			assert.Equal(t, false, resp["success"])
			assert.Contains(t, resp["message"], tt.msg)
		})
	}

	vendorToken := testutil.GenerateTestToken("vendor-user", entity.RoleVendor, vendor.ID)
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/job-orders", tests[1].body, vendorToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/job-orders", tests[1].body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/job-orders/missing", nil, staff)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/job-orders", map[string]interface{}{
		"vendor_id": vendor.ID, "job_work_type": entity.JobWorkDyeing,
		"materials_issued":         []map[string]interface{}{{"material_id": yarn.ID, "quantity": 1}},
		"expected_completion_date": "2030-01-31T10:00:00Z",
	}, staff)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(data["expected_completion_date"].(string), "2030-01-31T10:00:00"))
}

func TestAuthAPI(t *testing.T) {
	env, _ := setupHandlerTest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/auth/register", map[string]interface{}{
		"name": "Owner", "email": "owner@nool.com", "password": "secret1", "role": entity.RoleAdmin,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"email": "owner@nool.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	token := data["token"].(string)
	user := data["user"].(map[string]interface{})
	assert.NotContains(t, user, "password_hash")

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner@nool.com", testutil.ParseResponse(w)["data"].(map[string]interface{})["email"])

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"email": "owner@nool.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.ParseResponse(w)["data"], 1)

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/users", nil, testutil.SupervisorToken())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVendorAPI(t *testing.T) {
	env, _ := setupHandlerTest(t)
	staff := testutil.SupervisorToken()
	body := map[string]interface{}{
		"name":           "Kumar Knits",
		"contact_person": "Kumar",
		"phone":          "+919812345678",
		"job_work_types": []string{entity.JobWorkKnitting},
		"address":        map[string]interface{}{"city": "Erode", "state": "Tamil Nadu"},
	}

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/vendors", body, staff)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/vendors", body, staff)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, testutil.ParseResponse(w)["message"], "already exists")

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/vendors?job_work_type=Knitting&page=1&page_size=10", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.ParseResponse(w)
	assert.Len(t, resp["data"], 1)
	pagination := resp["pagination"].(map[string]interface{})
	assert.EqualValues(t, 10, pagination["page_size"])
	assert.EqualValues(t, 1, pagination["total_pages"])

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/vendors?is_active=false", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, testutil.ParseResponse(w)["data"])

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/vendors?is_active=true&search=%20kumar%20&page_size=500", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	resp = testutil.ParseResponse(w)
	assert.Len(t, resp["data"], 1)
	pagination = resp["pagination"].(map[string]interface{})
	assert.EqualValues(t, 1, pagination["page"])
	assert.EqualValues(t, 20, pagination["page_size"])

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/vendors?is_active=maybe", nil, staff)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/vendors", map[string]interface{}{
		"name": "Kumar Knits 2", "contact_person": "Kumar", "phone": "12-34",
		"job_work_types": []string{"Weaving"},
	}, staff)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	msg := testutil.ParseResponse(w)["message"].(string)
	assert.Contains(t, msg, "phone must be a valid phone number")
	assert.Contains(t, msg, "job_work_types[0] must be one of")

	w = testutil.DoRequest(env.Router, "DELETE", "/api/v1/vendors/"+id, nil, staff)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = testutil.DoRequest(env.Router, "DELETE", "/api/v1/vendors/"+id, nil, testutil.AdminToken())
	assert.Equal(t, http.StatusOK, w.Code)
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/vendors/"+id, nil, staff)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMaterialAPI(t *testing.T) {
	env, _ := setupHandlerTest(t)
	staff := testutil.SupervisorToken()

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/materials/seed-demo", nil, staff)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/materials/seed-demo", nil, staff)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/materials/inventory/summary", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, testutil.ParseResponse(w)["data"])

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "stock.csv")
	require.NoError(t, err)
	part.Write([]byte("name,material_type,quantity,unit\nViscose Yarn,Yarn,75,kg\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/materials/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+staff)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := testutil.ParseResponse(rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["created"])

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/materials?search=viscose", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.ParseResponse(w)["data"], 1)
}

func TestEventStream(t *testing.T) {
	env, hub := setupHandlerTest(t)
	vendor := testutil.SeedVendor(t, env.DB, "ABC Dyeing Works", "", entity.JobWorkDyeing)
	token := testutil.GenerateTestToken("vendor-user", entity.RoleVendor, vendor.ID)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/v1/events?token="+token, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		env.Router.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	hub.PublishJobOrder(sse.EventJobOrderStatus, sse.JobOrderEvent{ID: "other", Number: "JO-X", VendorID: "someone-else"})
	hub.PublishJobOrder(sse.EventJobOrderStatus, sse.JobOrderEvent{ID: "mine", Number: "JO-1", VendorID: vendor.ID})

	// Let the stream drain the buffered event before disconnecting.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: job_order_status")
	assert.Contains(t, body, `"jobOrderNumber":"JO-1"`)
	assert.NotContains(t, body, "JO-X")
	assert.Equal(t, 0, hub.Clients())
}
