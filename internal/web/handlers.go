package web

import (
	"errors"
	"strings"
	"time"

	"portfolio-builder/internal/models"
	"portfolio-builder/internal/session"
	buildportfolio "portfolio-builder/internal/workers/portfolio/build-portfolio"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// session returns the browser's session, issuing a cookie when absent.
func (s *Server) session(c *fiber.Ctx) (*session.Session, error) {
	sess, err := s.manager.GetOrCreate(s.baseCtx, c.Cookies(s.cookieName))
	if err != nil {
		return nil, err
	}
	if c.Cookies(s.cookieName) != sess.ID {
		c.Cookie(&fiber.Cookie{
			Name:     s.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HTTPOnly: true,
			Secure:   s.cfg.App.IsProduction(),
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Now().Add(365 * 24 * time.Hour),
		})
	}
	return sess, nil
}

// handleIndex renders the page for the session's current state.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	state := sess.Controller.State()

	c.Type("html", "utf-8")
	return renderPage(c, pageData{
		AppName:    s.cfg.App.Name,
		State:      state,
		Categories: s.gallery.Categories(),
		Year:       time.Now().Year(),
	})
}

// handleSubmit accepts JSON or form bodies. The response carries the state
// set by the synchronous transition: in_flight (202) or failed (422). The
// backend outcome arrives later over the websocket and /api/state.
func (s *Server) handleSubmit(c *fiber.Ctx) error {
	var input models.SubmissionInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	sess, err := s.session(c)
	if err != nil {
		return err
	}

	state, _, err := sess.Controller.Begin(s.baseCtx, &input)

	if isFormPost(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	switch {
	case errors.Is(err, buildportfolio.ErrSubmissionInFlight):
		return c.Status(fiber.StatusConflict).JSON(state)
	case err != nil:
		return err
	case state.Phase == models.PhaseFailed:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(state)
	default:
		return c.Status(fiber.StatusAccepted).JSON(state)
	}
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.manager.State(c.UserContext(), c.Cookies(s.cookieName)))
}

func (s *Server) handleGallery(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version":    s.gallery.Version,
		"categories": s.gallery.Categories(),
	})
}

func (s *Server) handleReady(c *fiber.Ctx) error {
	if s.ready != nil {
		if err := s.ready(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"error":  err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

func (s *Server) handleWebsocket(conn *websocket.Conn) {
	sessionID, _ := conn.Locals("sessionID").(string)
	if sessionID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "missing session"))
		return
	}
	s.manager.Hub().HandleConnection(conn, sessionID, s.manager.State(s.baseCtx, sessionID))
}

func isFormPost(c *fiber.Ctx) bool {
	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	return strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm)
}
