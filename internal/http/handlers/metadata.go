package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog"
	"github.com/NotSimone/Kobo-Metadata/internal/resolver"
	"github.com/NotSimone/Kobo-Metadata/internal/transport"
)

// resolveTimeout bounds one whole aggregation operation; in-flight detail
// fetches are abandoned cooperatively when it expires.
const resolveTimeout = 90 * time.Second

type resolveRequest struct {
	Title       string            `json:"title"`
	Authors     []string          `json:"authors"`
	Identifiers map[string]string `json:"identifiers"`
	Blacklist   []string          `json:"blacklist"`
	// TagBlacklist drops candidates whose catalog tags match a term.
	TagBlacklist []string `json:"tagBlacklist"`
	MaxResults   int      `json:"maxResults"`
}

type MetadataHandler struct {
	resolver *resolver.Resolver
}

func NewMetadataHandler(r *resolver.Resolver) *MetadataHandler {
	return &MetadataHandler{resolver: r}
}

func (h *MetadataHandler) Resolve(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}
	// Omitted maxResults decodes to 0 and gets the server default.
	if req.MaxResults < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "maxResults must be a positive integer or omitted"})
	}

	query := catalog.Query{
		Title:   strings.TrimSpace(req.Title),
		Authors: req.Authors,
		// Only the isbn identifier scheme is consulted; any other scheme in
		// the map is a host concern and ignored here.
		ISBN: strings.TrimSpace(req.Identifiers["isbn"]),
	}

	ctx, cancel := context.WithTimeout(c.Context(), resolveTimeout)
	defer cancel()

	records, err := h.resolver.Resolve(ctx, query, resolver.Options{
		Blacklist:    req.Blacklist,
		TagBlacklist: req.TagBlacklist,
		MaxResults:   req.MaxResults,
	})
	if err != nil {
		return respondResolveError(c, err)
	}

	return c.JSON(fiber.Map{"records": records})
}

func respondResolveError(c *fiber.Ctx, err error) error {
	var invalidQuery *catalog.InvalidQueryError
	if errors.As(err, &invalidQuery) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if resolver.IsNoResults(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	}

	var blocked *transport.BlockedError
	if errors.As(err, &blocked) {
		// Distinct status so the caller knows to wait rather than retry.
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": err.Error()})
	}

	var parseErr *catalog.ParseError
	var transportErr *transport.TransportError
	if errors.As(err, &parseErr) || errors.As(err, &transportErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"message": "resolve timed out"})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "unexpected failure"})
}
