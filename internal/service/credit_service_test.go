package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	creditRepo "vibesync/internal/repository/credit"
)

const webhookSecret = "whsec_test"

func signedHeader(payload []byte, ts time.Time) string {
	t := strconv.FormatInt(ts.Unix(), 10)
	return "t=" + t + ",v1=" + ComputeSignature(payload, t, webhookSecret)
}

func TestCreditService(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1760000000, 0)

	Convey("CreditService", t, func() {
		svc := NewCreditService(creditRepo.NewMemoryStore(), CreditConfig{
			FreeOnSignup:  3,
			PerPurchase:   50,
			WebhookSecret: webhookSecret,
		}).(*creditService)
		svc.now = func() time.Time { return now }

		Convey("新用户获得注册积分并可扣减到 0", func() {
			balance, err := svc.Balance(ctx, "u1")
			So(err, ShouldBeNil)
			So(balance, ShouldEqual, 3)

			for want := 2; want >= 0; want-- {
				remaining, err := svc.Deduct(ctx, "u1")
				So(err, ShouldBeNil)
				So(remaining, ShouldEqual, want)
			}
			_, err = svc.Deduct(ctx, "u1")
			So(errors.Is(err, ErrInsufficientCredits), ShouldBeTrue)

			balance, _ = svc.Initialize(ctx, "u1")
			So(balance, ShouldEqual, 0)

			balance, _ = svc.Refund(ctx, "u1")
			So(balance, ShouldEqual, 1)
		})

		Convey("支付完成回调增加积分且幂等", func() {
			payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"metadata":{"user_id":"u2"}}}}`)

			result, err := svc.HandleWebhook(ctx, payload, signedHeader(payload, now))
			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, WebhookCredited)
			So(result.Credits, ShouldEqual, 50)

			result, err = svc.HandleWebhook(ctx, payload, signedHeader(payload, now))
			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, WebhookDuplicate)

			balance, _ := svc.Balance(ctx, "u2")
			So(balance, ShouldEqual, 50)
		})

		Convey("缺少 user_id 或其他事件类型时忽略", func() {
			for _, payload := range [][]byte{
				[]byte(`{"id":"evt_2","type":"checkout.session.completed","data":{"object":{}}}`),
				[]byte(`{"id":"evt_3","type":"invoice.paid","data":{"object":{"metadata":{"user_id":"u3"}}}}`),
			} {
				result, err := svc.HandleWebhook(ctx, payload, signedHeader(payload, now))
				So(err, ShouldBeNil)
				So(result.Status, ShouldEqual, WebhookIgnored)
			}
			_, found, _ := svc.store.Balance(ctx, "u3")
			So(found, ShouldBeFalse)
		})

		Convey("签名错误", func() {
			payload := []byte(`{"id":"evt_4","type":"checkout.session.completed"}`)

			_, err := svc.HandleWebhook(ctx, payload, "t=1,v1=deadbeef")
			So(errors.Is(err, ErrInvalidSignature), ShouldBeTrue)

			_, err = svc.HandleWebhook(ctx, payload, signedHeader(payload, now.Add(-time.Hour)))
			So(errors.Is(err, ErrInvalidSignature), ShouldBeTrue)

			_, err = svc.HandleWebhook(ctx, payload, "garbage")
			So(errors.Is(err, ErrInvalidSignature), ShouldBeTrue)

			_, err = svc.HandleWebhook(ctx, []byte(`{"id":"evt_5"}`), signedHeader(payload, now))
			So(errors.Is(err, ErrInvalidSignature), ShouldBeTrue)
		})

		Convey("未配置密钥时拒绝回调", func() {
			svc.cfg.WebhookSecret = ""
			_, err := svc.HandleWebhook(ctx, []byte(`{}`), "t=1,v1=x")
			So(errors.Is(err, ErrWebhookDisabled), ShouldBeTrue)
		})
	})
}
