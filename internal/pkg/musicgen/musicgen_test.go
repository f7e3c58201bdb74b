package musicgen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), Config{Endpoint: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientTimeout(t *testing.T) {
	Convey("NewClient 超时设置", t, func() {
		shared := &http.Client{}
		c, err := NewClient(context.Background(), Config{
			Endpoint:   "http://musicgen.test/predict",
			HTTPClient: shared,
			Timeout:    90 * time.Second,
		})
		So(err, ShouldBeNil)
		So(c.httpClient.Timeout, ShouldEqual, 90*time.Second)

		Convey("不修改调用方传入的 client", func() {
			So(shared.Timeout, ShouldEqual, time.Duration(0))
			So(c.httpClient, ShouldNotPointTo, shared)
		})
	})
}

func TestClientGenerate(t *testing.T) {
	wav := []byte("RIFF....WAVEfmt ")

	Convey("Client.Generate", t, func() {
		Convey("成功返回解码后的音频", func() {
			var got predictRequest
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&got)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"predictions": []map[string]any{{
						"bytesBase64Encoded": base64.StdEncoding.EncodeToString(wav),
						"mimeType":           "audio/wav",
					}},
				})
			})

			audio, err := c.Generate(context.Background(), Request{Prompt: "warm lo-fi beat", NegativePrompt: "vocals"})
			So(err, ShouldBeNil)
			So(audio, ShouldResemble, wav)
			So(got.Instances, ShouldHaveLength, 1)
			So(got.Instances[0].Prompt, ShouldEqual, "warm lo-fi beat")
			So(got.Instances[0].NegativePrompt, ShouldEqual, "vocals")
			So(got.Parameters["sample_count"], ShouldEqual, float64(1))
		})

		Convey("recitation 错误归类为策略拒绝", func() {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Request blocked: recitation checks failed","status":"INVALID_ARGUMENT"}}`))
			})

			_, err := c.Generate(context.Background(), Request{Prompt: "famous song"})
			So(errors.Is(err, ErrPolicyRejection), ShouldBeTrue)
			var genErr *GenerationError
			So(errors.As(err, &genErr), ShouldBeTrue)
			So(genErr.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("过滤原因归类为策略拒绝", func() {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"predictions":[{"raiMediaFilteredReasons":["unsafe content"]}]}`))
			})
			_, err := c.Generate(context.Background(), Request{Prompt: "x"})
			So(errors.Is(err, ErrPolicyRejection), ShouldBeTrue)
		})

		Convey("其他错误不是策略拒绝", func() {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"code":500,"message":"internal error","status":"INTERNAL"}}`))
			})
			_, err := c.Generate(context.Background(), Request{Prompt: "x"})
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrPolicyRejection), ShouldBeFalse)
		})

		Convey("空预测", func() {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"predictions":[]}`))
			})
			_, err := c.Generate(context.Background(), Request{Prompt: "x"})
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrPolicyRejection), ShouldBeFalse)
		})

		Convey("非 JSON 响应", func() {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("<html>bad gateway</html>"))
			})
			_, err := c.Generate(context.Background(), Request{Prompt: "x"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("NewClient 需要项目或 endpoint", t, func() {
		_, err := NewClient(context.Background(), Config{AccessToken: "token"})
		So(err, ShouldNotBeNil)
	})
}

func TestTruncatePrompt(t *testing.T) {
	Convey("TruncatePrompt", t, func() {
		Convey("未超出时原样返回", func() {
			So(TruncatePrompt("short prompt.", 2000), ShouldEqual, "short prompt.")
		})

		Convey("句号在后 40% 时在句号处截断", func() {
			prompt := strings.Repeat("a", 70) + "." + strings.Repeat("b", 50)
			out := TruncatePrompt(prompt, 100)
			So(out, ShouldEqual, strings.Repeat("a", 70)+".")
		})

		Convey("句号太靠前时硬截断", func() {
			prompt := strings.Repeat("a", 30) + "." + strings.Repeat("b", 100)
			out := TruncatePrompt(prompt, 100)
			So(len([]rune(out)), ShouldEqual, 100)
		})

		Convey("按字符计数", func() {
			prompt := strings.Repeat("音", 150)
			So(len([]rune(TruncatePrompt(prompt, 100))), ShouldEqual, 100)
		})

		Convey("结果永远不超过预算", func() {
			for _, n := range []int{1, 10, 500, 1999, 2000, 2001, 5000} {
				prompt := strings.Repeat("Sentence with words. ", n/20+1) + strings.Repeat("z", n)
				So(len([]rune(TruncatePrompt(prompt, 2000))), ShouldBeLessThanOrEqualTo, 2000)
			}
		})
	})

	Convey("ComposePrompt 保留完整后缀", t, func() {
		base := strings.Repeat("x", 2500)
		out := ComposePrompt(base, 2000, " Lo-fi chill.", " "+RetryModifier(2))
		So(len([]rune(out)), ShouldBeLessThanOrEqualTo, 2000)
		So(strings.HasSuffix(out, " Lo-fi chill. "+RetryModifiers[0]), ShouldBeTrue)

		So(ComposePrompt("calm piano", 2000), ShouldEqual, "calm piano")
		So(len([]rune(ComposePrompt("abc", 5, strings.Repeat("s", 10)))), ShouldEqual, 5)
	})
}

func TestRetryModifier(t *testing.T) {
	Convey("RetryModifier 轮询修饰语", t, func() {
		So(RetryModifier(1), ShouldEqual, "")
		So(RetryModifier(2), ShouldEqual, RetryModifiers[0])
		So(RetryModifier(3), ShouldEqual, RetryModifiers[1])
		So(RetryModifier(2+len(RetryModifiers)), ShouldEqual, RetryModifiers[0])
	})
}

func TestPlanStyles(t *testing.T) {
	Convey("PlanStyles", t, func() {
		Convey("不足两个建议时使用内置风格", func() {
			plan := PlanStyles([]Style{{Label: "Jazz", Modifier: "smoky jazz"}}, 3)
			So(plan, ShouldHaveLength, 3)
			So(plan[0].Label, ShouldEqual, "Original")
			So(plan[1].Label, ShouldEqual, "Lo-fi")
			So(plan[2].Label, ShouldEqual, "Hype")
		})

		Convey("两个以上建议时只取前两个", func() {
			plan := PlanStyles([]Style{
				{Label: "Jazz Lounge", Modifier: "smoky jazz"},
				{Modifier: "ambient drift"},
				{Label: "Metal", Modifier: "heavy guitars"},
			}, 3)
			So(plan, ShouldHaveLength, 3)
			So(plan[1].Label, ShouldEqual, "Jazz Lounge")
			So(plan[2].Label, ShouldEqual, "Alt")
		})

		Convey("variants 限制数量", func() {
			So(PlanStyles(nil, 1), ShouldResemble, []Style{OriginalStyle})
		})
	})
}
