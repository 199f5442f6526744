package auth_test

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/wannadb/docbase-tasks/internal/auth"
)

func signed(claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("secret"))
	Expect(err).To(BeNil())
	return s
}

var _ = Describe("user token", func() {
	now := time.Unix(1_700_000_000, 0)

	It("reads username and expiry", func() {
		token := signed(jwt.MapClaims{"user": "leon", "exp": float64(now.Add(time.Hour).Unix())})

		info, err := auth.CheckToken(token, now)
		Expect(err).To(BeNil())
		Expect(info.Opaque).To(BeFalse())
		Expect(info.Username).To(Equal("leon"))
		Expect(info.ExpiresAt.Equal(now.Add(time.Hour))).To(BeTrue())
	})

	It("rejects expired tokens", func() {
		token := signed(jwt.MapClaims{"sub": "leon", "exp": float64(now.Add(-time.Minute).Unix())})

		info, err := auth.CheckToken(token, now)
		Expect(errors.Is(err, auth.ErrTokenExpired)).To(BeTrue())
		Expect(info.Username).To(Equal("leon"))
	})

	It("accepts tokens without expiry", func() {
		token := signed(jwt.MapClaims{"user": "leon"})

		info, err := auth.CheckToken(token, now)
		Expect(err).To(BeNil())
		Expect(info.ExpiresAt).To(BeNil())
	})

	It("treats non JWT tokens as opaque", func() {
		info, err := auth.CheckToken("c2Vzc2lvbi10b2tlbg", now)
		Expect(err).To(BeNil())
		Expect(info.Opaque).To(BeTrue())
	})

	It("fails on an empty token", func() {
		_, err := auth.CheckToken("", now)
		Expect(err).NotTo(BeNil())
	})
})
