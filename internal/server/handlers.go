package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/pkg/gridglot"
	"github.com/gridglot/gridglot/pkg/sheet"
	"github.com/gridglot/gridglot/pkg/translate"
)

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "sessions": s.store.Len()})
}

func (s *Server) handleCreateSession(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "missing file upload")
	}

	f, err := fh.Open()
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "unreadable file upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "unreadable file upload")
	}

	gg, err := gridglot.New(s.cfg.SessionOpts...)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, err.Error())
	}

	var ingestOpts []sheet.Option
	if name := c.FormValue("sheet"); name != "" {
		ingestOpts = append(ingestOpts, sheet.WithSheet(name))
	}

	g, err := gg.Ingest(c.Context(), data, ingestOpts...)
	if err != nil {
		gg.Close()
		var parseErr *sheet.ParseError
		if errors.As(err, &parseErr) {
			return apiError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return apiError(c, fiber.StatusInternalServerError, err.Error())
	}

	sess := &session{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now(),
		lastAccess: time.Now(),
		gg:         gg,
		grid:       g,
	}
	s.store.Put(sess)

	rows, cols := g.Shape()
	logger.Info("session created",
		"session", sess.ID,
		"file", fh.Filename,
		"rows", rows,
		"cols", cols)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      sess.ID,
		"sheet":   g.Sheet,
		"rows":    rows,
		"cols":    cols,
		"quality": gg.Quality(g),
	})
}

func (s *Server) handleGetSession(c fiber.Ctx) error {
	sess, ok := s.store.Get(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "session not found")
	}

	sess.mu.Lock()
	runErr := sess.runErr
	translated := sess.translated != nil
	lang := sess.targetLang
	sess.mu.Unlock()

	rows, cols := sess.grid.Shape()
	resp := fiber.Map{
		"id":         sess.ID,
		"created_at": sess.CreatedAt,
		"rows":       rows,
		"cols":       cols,
		"state":      sess.gg.State(),
		"stats":      sess.gg.Stats(),
		"translated": translated,
	}
	if lang != "" {
		resp["target_lang"] = lang
	}
	if runErr != nil {
		resp["error"] = runErr.Error()
	}
	return c.JSON(resp)
}

type translateRequest struct {
	TargetLang string `json:"target_lang"`
}

func (s *Server) handleTranslate(c fiber.Ctx) error {
	sess, ok := s.store.Get(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "session not found")
	}

	var req translateRequest
	if err := c.Bind().Body(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "malformed request body")
	}

	sess.mu.Lock()
	if sess.cancel != nil {
		sess.mu.Unlock()
		return apiError(c, fiber.StatusConflict, "translation already running")
	}
	runCtx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	sess.runErr = nil
	sess.targetLang = req.TargetLang
	sess.mu.Unlock()

	go func() {
		translated, err := sess.gg.TranslateGrid(runCtx, sess.grid, req.TargetLang)

		sess.mu.Lock()
		if translated != nil {
			sess.translated = translated
		}
		sess.runErr = err
		sess.cancel = nil
		sess.mu.Unlock()

		if err != nil && !errors.Is(err, translate.ErrCancelled) {
			logger.Error("translation run failed", "session", sess.ID, "error", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":    sess.ID,
		"state": string(translate.StateRunning),
	})
}

func (s *Server) handleCancel(c fiber.Ctx) error {
	sess, ok := s.store.Get(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "session not found")
	}

	sess.mu.Lock()
	cancel := sess.cancel
	sess.mu.Unlock()

	if cancel == nil {
		return apiError(c, fiber.StatusConflict, "no translation running")
	}
	cancel()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": sess.ID})
}

func (s *Server) handleExport(c fiber.Ctx) error {
	sess, ok := s.store.Get(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "session not found")
	}

	sess.mu.Lock()
	g := sess.translated
	sess.mu.Unlock()
	if g == nil {
		g = sess.grid
	}

	switch format := c.Query("format", "xlsx"); format {
	case "xlsx":
		data, err := sess.gg.Export(g)
		if err != nil {
			return apiError(c, fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="translated.xlsx"`)
		return c.Send(data)
	case "csv":
		data, err := sess.gg.ExportCSV(g)
		if err != nil {
			return apiError(c, fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="translated.csv"`)
		return c.Send(data)
	default:
		return apiError(c, fiber.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
	}
}

func (s *Server) handleQuality(c fiber.Ctx) error {
	sess, ok := s.store.Get(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "session not found")
	}
	return c.JSON(sess.gg.Quality(sess.grid))
}

func (s *Server) handleDeleteSession(c fiber.Ctx) error {
	if !s.store.Delete(c.Params("id")) {
		return apiError(c, fiber.StatusNotFound, "session not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func apiError(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
