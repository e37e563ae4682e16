package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/amaumene/packarr/internal/errors"
	"github.com/amaumene/packarr/internal/models"
	"github.com/amaumene/packarr/pkg/titleparser"
)

// handleResolve resolves a target inside the pack identified by the
// info hash in the path. Series requests carry season/episode query
// parameters; movie requests carry titles, year and title_id.
func (h *Handler) handleResolve(c *gin.Context) {
	req, ok := resolveRequestFromQuery(c)
	if !ok {
		return
	}
	req.InfoHash = c.Param("hash")

	resolution, err := h.services.Resolver.Resolve(c.Request.Context(), req)
	if err != nil {
		h.writeResolveError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolution)
}

type resolveTorrentRequest struct {
	TorrentBase64 string   `json:"torrent_base64" binding:"required"`
	Season        int      `json:"season"`
	Episode       int      `json:"episode"`
	Titles        []string `json:"titles"`
	Year          int      `json:"year"`
	TitleID       string   `json:"title_id"`
}

// handleResolveTorrent resolves a target from caller-supplied raw
// .torrent metadata instead of a provider lookup.
func (h *Handler) handleResolveTorrent(c *gin.Context) {
	var body resolveTorrentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	torrentData, err := base64.StdEncoding.DecodeString(body.TorrentBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "torrent_base64 is not valid base64"})
		return
	}

	req := models.ResolveRequest{
		Season:  body.Season,
		Episode: body.Episode,
		Titles:  body.Titles,
		Year:    body.Year,
		TitleID: body.TitleID,
	}

	resolution, err := h.services.Resolver.ResolveTorrent(c.Request.Context(), torrentData, req)
	if err != nil {
		h.writeResolveError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolution)
}

// handleParse exposes the filename parser directly, mostly for
// debugging pattern behavior against real release names.
func (h *Handler) handleParse(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name parameter"})
		return
	}
	c.JSON(http.StatusOK, titleparser.Parse(name))
}

func resolveRequestFromQuery(c *gin.Context) (models.ResolveRequest, bool) {
	req := models.ResolveRequest{
		Season:  queryInt(c, "season"),
		Episode: queryInt(c, "episode"),
		Year:    queryInt(c, "year"),
		TitleID: c.Query("title_id"),
	}
	if titles := c.Query("titles"); titles != "" {
		for _, t := range strings.Split(titles, ",") {
			if t = strings.TrimSpace(t); t != "" {
				req.Titles = append(req.Titles, t)
			}
		}
	}

	if req.Episode == 0 && len(req.Titles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request must carry either season/episode or titles"})
		return req, false
	}
	return req, true
}

func queryInt(c *gin.Context, key string) int {
	value := c.Query(key)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// writeResolveError maps the error taxonomy to HTTP statuses. Rate
// limits are surfaced as 429 so upstream automation backs off instead
// of blacklisting the pack.
func (h *Handler) writeResolveError(c *gin.Context, err error) {
	h.services.Logger.Debugf("[api] resolve failed: %v", err)

	switch {
	case apperrors.IsParse(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsRateLimit(err):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case apperrors.IsUnreliablePack(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
