package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billed/internal/logger"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/newbill"
	"gitlab.com/yelinaung/billed/internal/receipts"
	"gitlab.com/yelinaung/billed/internal/repository"
	"gitlab.com/yelinaung/billed/internal/store"
	"gitlab.com/yelinaung/billed/internal/store/httpstore"
)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func ownerEmail(c *gin.Context) string {
	if email := strings.TrimSpace(c.PostForm("email")); email != "" {
		return email
	}
	return strings.TrimSpace(c.GetHeader(httpstore.EmailHeader))
}

func (s *Server) listBills(c *gin.Context) {
	email := strings.TrimSpace(c.GetHeader(httpstore.EmailHeader))
	if email == "" {
		abort(c, http.StatusBadRequest, "missing "+httpstore.EmailHeader+" header")
		return
	}

	bills, err := s.backend.List(c.Request.Context(), email)
	if err != nil {
		logger.Log.Error().Err(err).Str("user_hash", logger.HashEmail(email)).Msg("Failed to list bills")
		abort(c, http.StatusInternalServerError, "failed to list bills")
		return
	}
	c.JSON(http.StatusOK, bills)
}

func (s *Server) createBill(c *gin.Context) {
	email := ownerEmail(c)
	if email == "" {
		abort(c, http.StatusBadRequest, "email is required")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		abort(c, http.StatusBadRequest, "file is required")
		return
	}
	fileName := strings.TrimSpace(fh.Filename)
	if err := newbill.ValidateFile(fileName); err != nil {
		abort(c, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	if fh.Size > MaxUploadSize {
		abort(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	draft, err := parseDraft(c, email)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	f, err := fh.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize))
	if err != nil {
		abort(c, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = newbill.ContentTypeFor(fileName)
	}

	bill, err := s.backend.Create(c.Request.Context(), draft, store.Upload{
		Name:        fileName,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		if errors.Is(err, store.ErrMissingOwner) {
			abort(c, http.StatusBadRequest, err.Error())
			return
		}
		logger.Log.Error().Err(err).Str("user_hash", logger.HashEmail(email)).Msg("Failed to create bill")
		abort(c, http.StatusInternalServerError, "failed to create bill")
		return
	}

	logger.Log.Info().
		Str("user_hash", logger.HashEmail(email)).
		Str("bill_id", bill.ID).
		Str("file", logger.SanitizeFileName(fileName)).
		Msg("Bill created")
	c.JSON(http.StatusCreated, bill)
}

func parseDraft(c *gin.Context, email string) (models.Bill, error) {
	draft := models.Bill{
		Email:      email,
		Type:       strings.TrimSpace(c.PostForm("type")),
		Name:       strings.TrimSpace(c.PostForm("name")),
		Date:       strings.TrimSpace(c.PostForm("date")),
		Commentary: c.PostForm("commentary"),
		Pct:        models.DefaultPct,
	}

	var err error
	if draft.Amount, err = parseDecimal("amount", c.PostForm("amount")); err != nil {
		return models.Bill{}, err
	}
	if draft.VAT, err = parseDecimal("vat", c.PostForm("vat")); err != nil {
		return models.Bill{}, err
	}
	if raw := strings.TrimSpace(c.PostForm("pct")); raw != "" {
		pct, err := strconv.Atoi(raw)
		if err != nil || pct < 0 {
			return models.Bill{}, errors.New("pct must be a non-negative integer")
		}
		if pct > 0 {
			draft.Pct = pct
		}
	}
	if _, err := time.Parse(time.DateOnly, draft.Date); err != nil {
		return models.Bill{}, errors.New("date must be YYYY-MM-DD")
	}
	if utf8.RuneCountInString(draft.Commentary) > models.MaxCommentaryLength {
		return models.Bill{}, fmt.Errorf("commentary exceeds %d characters", models.MaxCommentaryLength)
	}
	return draft, nil
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", field)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}

type statusRequest struct {
	Status models.BillStatus `json:"status" binding:"required"`
}

func (s *Server) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "status is required")
		return
	}

	bill, err := s.backend.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	switch {
	case errors.Is(err, repository.ErrInvalidStatus):
		abort(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, repository.ErrBillNotFound):
		abort(c, http.StatusNotFound, "bill not found")
		return
	case err != nil:
		logger.Log.Error().Err(err).Str("bill_id", c.Param("id")).Msg("Failed to update bill status")
		abort(c, http.StatusInternalServerError, "failed to update status")
		return
	}

	logger.Log.Info().
		Str("bill_id", bill.ID).
		Str("status", string(bill.Status)).
		Msg("Bill status updated")
	c.JSON(http.StatusOK, bill)
}

func (s *Server) readReceipt(c *gin.Context) ([]byte, bool) {
	key := c.Param("key")
	data, err := s.backend.Receipt(key)
	switch {
	case errors.Is(err, receipts.ErrInvalidKey), errors.Is(err, receipts.ErrNotFound):
		abort(c, http.StatusNotFound, "receipt not found")
		return nil, false
	case err != nil:
		logger.Log.Error().Err(err).Msg("Failed to read receipt")
		abort(c, http.StatusInternalServerError, "failed to read receipt")
		return nil, false
	}
	return data, true
}

func (s *Server) getReceipt(c *gin.Context) {
	data, ok := s.readReceipt(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, receipts.ContentType(c.Param("key")), data)
}

func (s *Server) getReceiptPreview(c *gin.Context) {
	data, ok := s.readReceipt(c)
	if !ok {
		return
	}
	thumb, err := receipts.Thumbnail(data, receipts.PreviewSize)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to render receipt preview")
		abort(c, http.StatusUnprocessableEntity, "receipt cannot be previewed")
		return
	}
	c.Data(http.StatusOK, "image/jpeg", thumb)
}
