package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dogame-art/nfc-gateway/internal/artwork"
	"github.com/dogame-art/nfc-gateway/internal/auth"
	"github.com/dogame-art/nfc-gateway/internal/classifier"
	"github.com/dogame-art/nfc-gateway/internal/metrics"
	"github.com/dogame-art/nfc-gateway/internal/middleware"
)

// machineTokenTimeout bounds the best-effort token issuance so a slow signer
// cannot hold up the artwork response.
const machineTokenTimeout = 2 * time.Second

type ArtworkHandler struct {
	resolver       *artwork.Resolver
	issuer         auth.TokenIssuer
	publicBaseURL  string
	apiBaseURL     string
	requestTimeout time.Duration
	logger         *zap.Logger
}

func NewArtworkHandler(
	resolver *artwork.Resolver,
	issuer auth.TokenIssuer,
	publicBaseURL, apiBaseURL string,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *ArtworkHandler {
	return &ArtworkHandler{
		resolver:       resolver,
		issuer:         issuer,
		publicBaseURL:  strings.TrimSuffix(publicBaseURL, "/"),
		apiBaseURL:     strings.TrimSuffix(apiBaseURL, "/"),
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// Get serves GET /artwork/:slug. Bots were rejected and devices
// authenticated before this point; only the routing decision is left.
func (h *ArtworkHandler) Get(c *gin.Context) {
	slug := c.Param("slug")

	// Generic callers get a redirect to the public page, never artwork
	// data. The slug is passed through untouched.
	if middleware.ClassFromContext(c) != classifier.TrustedDevice {
		c.Redirect(http.StatusFound, h.publicURL(slug))
		return
	}

	if !artwork.ValidSlug(slug) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slug format"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	record, err := h.resolver.Resolve(ctx, slug)
	if errors.Is(err, artwork.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Artwork not found",
			"slug":  slug,
		})
		return
	}
	if err != nil {
		h.logger.Error("artwork resolve failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.String("slug", slug),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	remaining := middleware.RemainingFromContext(c)

	response := gin.H{
		"success":              true,
		"slug":                 record.Slug,
		"title":                record.Title,
		"image_url":            record.ImageURL,
		"description":          record.Description,
		"exclusive":            record.Exclusive,
		"display_duration":     record.DisplayDuration,
		"access_timestamp":     time.Now().UnixMilli(),
		"rate_limit_remaining": remaining,
	}

	if token := h.machineToken(c, slug); token != "" {
		response["machine_token"] = token
	}

	c.Header("Cache-Control", "public, s-maxage=3600, stale-while-revalidate=86400")
	c.Header("X-Rate-Limit-Remaining", strconv.Itoa(remaining))
	c.JSON(http.StatusOK, response)
}

// Discover serves GET /nfc/:slug, the tag-facing alias. An exhibit device
// tapping a tag has no credential yet, so instead of a 401 it receives the
// bootstrap document pointing at the authenticated endpoint. Everyone else
// is redirected exactly like the main path.
func (h *ArtworkHandler) Discover(c *gin.Context) {
	slug := c.Param("slug")

	if middleware.ClassFromContext(c) != classifier.TrustedDevice {
		c.Redirect(http.StatusFound, h.publicURL(slug))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type":          "exclusive",
		"slug":          slug,
		"auth_required": true,
		"api_endpoint":  h.apiBaseURL + "/artwork/" + url.PathEscape(slug),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

// machineToken issues the optional machine-to-machine token. Best-effort:
// any failure just means the field is omitted.
func (h *ArtworkHandler) machineToken(c *gin.Context, slug string) string {
	if h.issuer == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), machineTokenTimeout)
	defer cancel()

	token, err := h.issuer.Issue(ctx, slug)
	if err != nil {
		metrics.MachineTokensIssued.WithLabelValues("failed").Inc()
		h.logger.Debug("machine token issuance failed",
			zap.String("slug", slug),
			zap.Error(err),
		)
		return ""
	}

	metrics.MachineTokensIssued.WithLabelValues("issued").Inc()
	return token
}

func (h *ArtworkHandler) publicURL(slug string) string {
	return h.publicBaseURL + "/" + url.PathEscape(slug) + "/"
}
