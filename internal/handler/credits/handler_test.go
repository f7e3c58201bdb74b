package credits

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"vibesync/internal/pkg/ctxutil"
	creditRepo "vibesync/internal/repository/credit"
	"vibesync/internal/service"
)

const testSecret = "whsec_test"

func newTestEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewCreditService(creditRepo.NewMemoryStore(), service.CreditConfig{
		FreeOnSignup:  3,
		PerPurchase:   50,
		WebhookSecret: secret,
	})
	h := NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-User-Id"); uid != "" {
			c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), uid))
		}
		c.Next()
	})
	r.GET("/api/v1/credits/balance", h.Balance)
	r.POST("/api/v1/credits/initialize", h.Initialize)
	r.POST("/api/v1/credits/webhook", h.Webhook)
	return r
}

func do(r *gin.Engine, method, path, userID string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func balanceOf(w *httptest.ResponseRecorder) CreditBalance {
	var resp struct {
		Data CreditBalance `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Data
}

func signed(payload []byte) map[string]string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	return map[string]string{SignatureHeader: "t=" + ts + ",v1=" + service.ComputeSignature(payload, ts, testSecret)}
}

func TestCredits(t *testing.T) {
	Convey("积分接口", t, func() {
		r := newTestEngine(testSecret)

		Convey("新用户余额为注册赠送额度", func() {
			w := do(r, http.MethodGet, "/api/v1/credits/balance", "u1", nil, nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(balanceOf(w), ShouldResemble, CreditBalance{Credits: 3, UserID: "u1"})

			w = do(r, http.MethodPost, "/api/v1/credits/initialize", "u1", nil, nil)
			So(balanceOf(w).Credits, ShouldEqual, 3)
		})

		Convey("支付回调增加积分且只处理一次", func() {
			payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"metadata":{"user_id":"u1"}}}}`)

			w := do(r, http.MethodPost, "/api/v1/credits/webhook", "", payload, signed(payload))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"credited"`)

			w = do(r, http.MethodPost, "/api/v1/credits/webhook", "", payload, signed(payload))
			So(w.Body.String(), ShouldContainSubstring, `"status":"duplicate"`)

			w = do(r, http.MethodGet, "/api/v1/credits/balance", "u1", nil, nil)
			So(balanceOf(w).Credits, ShouldEqual, 50)
		})

		Convey("签名错误返回 400", func() {
			payload := []byte(`{"id":"evt_2","type":"checkout.session.completed"}`)
			w := do(r, http.MethodPost, "/api/v1/credits/webhook", "", payload, map[string]string{
				SignatureHeader: "t=1,v1=deadbeef",
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "40103")
		})
	})

	Convey("未配置密钥时回调返回 503", t, func() {
		r := newTestEngine("")
		w := do(r, http.MethodPost, "/api/v1/credits/webhook", "", []byte(`{}`), nil)
		So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
	})
}
