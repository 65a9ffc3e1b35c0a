package auth_test

import (
	"context"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("JWTTokenGenerator", func() {
	var (
		gen  *auth.JWTTokenGenerator
		user *auth.UserCredentials
	)

	BeforeEach(func() {
		gen = auth.NewJWTTokenGenerator(accessSecret, refreshSecret, time.Hour, 24*time.Hour)
		dept := int64(5)
		user = &auth.UserCredentials{ID: 42, Username: "lee", Role: internal.RoleManager, DepartmentID: &dept}
	})

	It("round-trips the identity claims and a unique jti", func() {
		first, err := gen.GenerateAccessToken(user)
		Expect(err).NotTo(HaveOccurred())
		second, err := gen.GenerateAccessToken(user)
		Expect(err).NotTo(HaveOccurred())

		c1, err := gen.ValidateAccessToken(first)
		Expect(err).NotTo(HaveOccurred())
		c2, err := gen.ValidateAccessToken(second)
		Expect(err).NotTo(HaveOccurred())

		Expect(c1.UserID).To(Equal(int64(42)))
		Expect(c1.Username).To(Equal("lee"))
		Expect(c1.Role).To(Equal(internal.RoleManager))
		Expect(*c1.DepartmentID).To(Equal(int64(5)))
		Expect(c1.TokenType).To(Equal(auth.TokenTypeAccess))
		Expect(c1.ID).NotTo(BeEmpty())
		Expect(c1.ID).NotTo(Equal(c2.ID))
	})

	It("returns the refresh expiry", func() {
		_, exp, err := gen.GenerateRefreshToken(user)
		Expect(err).NotTo(HaveOccurred())
		Expect(exp).To(BeTemporally("~", time.Now().Add(24*time.Hour), time.Minute))
	})

	It("does not accept a refresh token as an access token", func() {
		refresh, _, err := gen.GenerateRefreshToken(user)
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateAccessToken(refresh)
		Expect(err).To(Equal(internal.ErrInvalidToken))
	})

	It("does not accept an access token as a refresh token", func() {
		access, err := gen.GenerateAccessToken(user)
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateRefreshToken(access)
		Expect(err).To(Equal(internal.ErrInvalidToken))
	})

	It("reports expired tokens", func() {
		gen.AccessTokenTTL = -time.Minute
		access, err := gen.GenerateAccessToken(user)
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateAccessToken(access)
		Expect(err).To(Equal(internal.ErrTokenExpired))
	})

	It("rejects garbage", func() {
		_, err := gen.ValidateAccessToken("not-a-jwt")
		Expect(err).To(Equal(internal.ErrInvalidToken))
	})
})

var _ = Describe("MemoryBlacklist", func() {
	It("remembers ids until their ttl passes", func() {
		bl := auth.NewMemoryBlacklist()
		ctx := context.Background()

		Expect(bl.Add(ctx, "jti-1", time.Hour)).To(Succeed())
		Expect(bl.Add(ctx, "jti-2", 0)).To(Succeed())

		Expect(bl.Contains(ctx, "jti-1")).To(BeTrue())
		Expect(bl.Contains(ctx, "jti-2")).To(BeFalse())
		Expect(bl.Contains(ctx, "unknown")).To(BeFalse())
	})
})
