package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJWT(t *testing.T) {
	Convey("JWT 校验", t, func() {
		j := NewJWT("secret", time.Hour)

		Convey("签发的 Token 可以通过校验", func() {
			token, err := j.GenerateToken("user-1")
			So(err, ShouldBeNil)

			claims, err := j.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.EffectiveUserID(), ShouldEqual, "user-1")
		})

		Convey("只有 sub 时使用 sub 作为用户ID", func() {
			token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{
				RegisteredClaims: gojwt.RegisteredClaims{
					Subject:   "user-sub",
					ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
				},
			})
			signed, err := token.SignedString([]byte("secret"))
			So(err, ShouldBeNil)

			claims, err := j.ValidateToken(signed)
			So(err, ShouldBeNil)
			So(claims.EffectiveUserID(), ShouldEqual, "user-sub")
		})

		Convey("密钥不一致时返回 ErrInvalidToken", func() {
			token, _ := NewJWT("other", time.Hour).GenerateToken("user-1")
			_, err := j.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("过期 Token 返回 ErrExpiredToken", func() {
			token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{
				UserID: "user-1",
				RegisteredClaims: gojwt.RegisteredClaims{
					ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Minute)),
				},
			})
			signed, _ := token.SignedString([]byte("secret"))
			_, err := j.ValidateToken(signed)
			So(err, ShouldEqual, ErrExpiredToken)
		})

		Convey("缺少用户ID的 Token 无效", func() {
			token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{})
			signed, _ := token.SignedString([]byte("secret"))
			_, err := j.ValidateToken(signed)
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})
}
