package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"filehub/internal/service"
)

type projectRequest struct {
	Name        string   `json:"name"`
	CreatorID   string   `json:"creator_id"`
	MemberIDs   []string `json:"member_ids"`
	ApproverIDs []string `json:"approver_ids"`
}

type addApproversRequest struct {
	UserIDs []string `json:"user_ids"`
}

// CreateProject creates a project. The creator is included in both the member
// and approver lists by convention, mirroring how project creation is called.
func CreateProject(projectSvc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req projectRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Name == "" || req.CreatorID == "" {
			return writeError(c, fiber.StatusBadRequest, "FIELDS_REQUIRED", "name and creator_id are required")
		}

		members := append(req.MemberIDs, req.CreatorID)
		approvers := append(req.ApproverIDs, req.CreatorID)

		p, err := projectSvc.Create(c.UserContext(), req.Name, req.CreatorID, members, approvers)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Location("/projects/" + p.ID)
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// ListProjects returns all projects.
func ListProjects(projectSvc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := projectSvc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// GetProject returns one project by ID.
func GetProject(projectSvc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := projectSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdateProject wholesale-replaces name, creator, and both membership sets.
func UpdateProject(projectSvc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req projectRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Name == "" || req.CreatorID == "" {
			return writeError(c, fiber.StatusBadRequest, "FIELDS_REQUIRED", "name and creator_id are required")
		}

		p, err := projectSvc.Update(c.UserContext(), id, req.Name, req.CreatorID, req.MemberIDs, req.ApproverIDs)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// DeleteProject removes a project without documents.
func DeleteProject(projectSvc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := projectSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AddMember grants the member role, revoking approver if held.
func AddMember(projectSvc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID, userID := c.Params("id"), c.Params("userId")
		if _, err := uuid.Parse(projectID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if _, err := uuid.Parse(userID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := projectSvc.AddMember(c.UserContext(), projectID, userID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// RemoveMember revokes the member role only.
func RemoveMember(projectSvc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID, userID := c.Params("id"), c.Params("userId")
		if _, err := uuid.Parse(projectID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if _, err := uuid.Parse(userID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := projectSvc.RemoveMember(c.UserContext(), projectID, userID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// AddApprovers grants the approver role to a batch of users atomically.
func AddApprovers(projectSvc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID := c.Params("id")
		if _, err := uuid.Parse(projectID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req addApproversRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if len(req.UserIDs) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FIELDS_REQUIRED", "user_ids is required")
		}

		p, err := projectSvc.AddApprovers(c.UserContext(), projectID, req.UserIDs)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// RemoveApprover revokes the approver role only.
func RemoveApprover(projectSvc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID, userID := c.Params("id"), c.Params("userId")
		if _, err := uuid.Parse(projectID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if _, err := uuid.Parse(userID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := projectSvc.RemoveApprover(c.UserContext(), projectID, userID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}
