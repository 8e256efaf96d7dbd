// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"

	"fragrance-finder/internal/common/errors"
	"fragrance-finder/internal/common/validation"
	"fragrance-finder/internal/matching"
	newslettersubscribe "fragrance-finder/internal/workers/communication/newsletter-subscribe"
	sendresultsemail "fragrance-finder/internal/workers/communication/send-results-email"
	insertquizresponse "fragrance-finder/internal/workers/quiz/insert-quiz-response"
	saveemail "fragrance-finder/internal/workers/quiz/save-email"
	scorefragrances "fragrance-finder/internal/workers/quiz/score-fragrances"

	"github.com/gin-gonic/gin"
)

// getMatchingFragrances always answers 200 with a results array, whatever
// happens upstream.
func (s *Server) getMatchingFragrances(c *gin.Context) {
	var input scorefragrances.Input
	if err := s.bind(c, scoreSchema, &input); err != nil {
		s.logger.Warn("unreadable scoring request, returning no results", map[string]interface{}{
			"error": err,
		})
		c.JSON(http.StatusOK, gin.H{"results": []matching.RankedResult{}, "status": "invalid_request"})
		return
	}

	output, err := s.deps.Scorer.Execute(c.Request.Context(), &input)
	if err != nil {
		s.logger.Error("scoring failed, returning no results", map[string]interface{}{
			"error": err,
		})
		c.JSON(http.StatusOK, gin.H{"results": []matching.RankedResult{}, "status": "error"})
		return
	}

	c.JSON(http.StatusOK, output)
}

func (s *Server) insertQuizResponse(c *gin.Context) {
	var input insertquizresponse.Input
	if err := s.bind(c, insertQuizResponseSchema, &input); err != nil {
		s.respondError(c, err)
		return
	}

	output, err := s.deps.Responses.Execute(c.Request.Context(), &input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": output})
}

func (s *Server) saveEmail(c *gin.Context) {
	var input saveemail.Input
	if err := s.bind(c, saveEmailSchema, &input); err != nil {
		s.respondError(c, err)
		return
	}

	output, err := s.deps.Emails.Execute(c.Request.Context(), &input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (s *Server) newsletterSubscribe(c *gin.Context) {
	var input newslettersubscribe.Input
	if err := s.bind(c, newsletterSchema, &input); err != nil {
		s.respondError(c, err)
		return
	}

	output, err := s.deps.Newsletter.Execute(c.Request.Context(), &input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (s *Server) sendEmail(c *gin.Context) {
	var input sendresultsemail.Input
	if err := s.bind(c, sendEmailSchema, &input); err != nil {
		s.respondError(c, err)
		return
	}

	output, err := s.deps.Mailer.Execute(c.Request.Context(), &input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, output)
}

// bind validates the raw body against schema and decodes it into out.
func (s *Server) bind(c *gin.Context, schema *validation.Schema, out interface{}) error {
	body, err := c.GetRawData()
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}

	result := schema.Validate(body)
	if !result.Valid {
		return &bindError{messages: result.GetErrorMessages()}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	return nil
}

// bindError carries schema violations to the 400 response.
type bindError struct {
	messages []string
}

func (e *bindError) Error() string {
	return "request body failed schema validation"
}

func (s *Server) respondError(c *gin.Context, err error) {
	if be, ok := err.(*bindError); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": be.messages})
		return
	}

	stdErr := errors.AsStandardError(err)
	status := errors.HTTPStatus(stdErr)

	body := gin.H{
		"error":   stdErr.Message,
		"code":    stdErr.Code,
		"details": stdErr.Details,
	}
	if len(stdErr.Metadata) > 0 {
		body["metadata"] = stdErr.Metadata
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("operation failed", map[string]interface{}{
			"route":     c.FullPath(),
			"errorCode": stdErr.Code,
			"details":   stdErr.Details,
		})
	}
	c.JSON(status, body)
}
