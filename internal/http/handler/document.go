package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentapi/internal/model"
	"rentapi/internal/numbering"
	"rentapi/internal/service"
)

// createDocumentRequest is the JSON body for invoice and receipt creation.
type createDocumentRequest struct {
	OwnerID  string `json:"owner_id"`
	RoomName string `json:"room_name"`
	Amount   string `json:"amount"`
	DueDate  string `json:"due_date,omitempty"` // RFC 3339, invoices only
}

func (r createDocumentRequest) toInput(c *fiber.Ctx) (service.CreateDocumentInput, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return service.CreateDocumentInput{}, errors.New("invalid amount")
	}

	in := service.CreateDocumentInput{
		OwnerID:     r.OwnerID,
		RoomName:    r.RoomName,
		Amount:      amount,
		ActorUserID: userID(c),
		ClientIP:    c.IP(),
		UserAgent:   c.Get(fiber.HeaderUserAgent),
	}
	if r.DueDate != "" {
		due, err := time.Parse(time.RFC3339, r.DueDate)
		if err != nil {
			return service.CreateDocumentInput{}, errors.New("invalid due_date")
		}
		in.DueDate = &due
	}
	return in, nil
}

// CreateInvoice mints the next invoice number and persists the invoice.
func CreateInvoice(svc service.DocumentService) fiber.Handler {
	return createDocument(func(c *fiber.Ctx, in service.CreateDocumentInput) (*model.Document, error) {
		return svc.CreateInvoice(c.UserContext(), in)
	})
}

// CreateReceipt mints the next receipt number and persists the receipt.
func CreateReceipt(svc service.DocumentService) fiber.Handler {
	return createDocument(func(c *fiber.Ctx, in service.CreateDocumentInput) (*model.Document, error) {
		return svc.CreateReceipt(c.UserContext(), in)
	})
}

func createDocument(create func(*fiber.Ctx, service.CreateDocumentInput) (*model.Document, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		in, err := req.toInput(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}

		doc, err := create(c, in)
		if err != nil {
			switch {
			case errors.Is(err, numbering.ErrAllocationContention):
				return writeError(c, fiber.StatusConflict, "ALLOCATION_CONTENTION", "numbering contention, retry the request")
			case errors.Is(err, service.ErrOwnerRequired),
				errors.Is(err, service.ErrAmountInvalid),
				errors.Is(err, service.ErrDueDateRequired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments returns an owner's documents of one kind.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID := c.Query("owner_id")
		if ownerID == "" {
			return writeError(c, fiber.StatusBadRequest, "OWNER_REQUIRED", "owner_id is required")
		}

		kind := model.DocumentKind(c.Query("kind", string(model.KindInvoice)))
		if kind != model.KindInvoice && kind != model.KindReceipt {
			return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", "kind must be invoice or receipt")
		}

		limit := c.QueryInt("limit", 10)
		offset := c.QueryInt("offset", 0)

		res, err := svc.List(c.UserContext(), ownerID, kind, limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetDocument returns a single document by ID.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}
