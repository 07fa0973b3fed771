package main

import (
	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/workflow"
)

func (h *handler) createWorkflow(c fiber.Ctx) error {
	var req workflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	w, err := req.toWorkflow()
	if err != nil {
		return h.fail(c, err)
	}
	created, err := h.store.CreateWorkflow(c.Context(), w)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(201).JSON(created)
}

func (h *handler) listWorkflows(c fiber.Ctx) error {
	workflows, err := h.store.ListWorkflows(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(workflows)
}

func (h *handler) getWorkflow(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	w, err := h.store.GetWorkflow(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if w == nil {
		return c.Status(404).JSON(fiber.Map{"error": "workflow not found"})
	}
	return c.JSON(w)
}

func (h *handler) updateWorkflow(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req workflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	// Only name and status are updatable here.
	req.Nodes, req.Edges = nil, nil
	w, err := req.toWorkflow()
	if err != nil {
		return h.fail(c, err)
	}
	w.ID = id
	if err := h.store.UpdateWorkflow(c.Context(), w); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(204)
}

func (h *handler) deleteWorkflow(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.store.DeleteWorkflow(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(204)
}

func (h *handler) addNode(c fiber.Ctx) error {
	workflowID, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req nodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	node, err := req.toNode()
	if err != nil {
		return h.fail(c, err)
	}
	node.Ref = ""
	id, err := h.store.AddNode(c.Context(), workflowID, node)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"id": id})
}

func (h *handler) listNodes(c fiber.Ctx) error {
	workflowID, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	nodes, err := h.store.ListNodes(c.Context(), workflowID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(nodes)
}

func (h *handler) getNode(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	n, err := h.store.GetNode(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if n == nil {
		return c.Status(404).JSON(fiber.Map{"error": "node not found"})
	}
	return c.JSON(n)
}

func (h *handler) updateNode(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req nodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	node, err := req.toNode()
	if err != nil {
		return h.fail(c, err)
	}
	node.ID = id
	if err := h.store.UpdateNode(c.Context(), node); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(204)
}

func (h *handler) deleteNode(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.store.DeleteNode(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(204)
}

// bindEdge decodes a single edge; refs only make sense in bulk creation.
func bindEdge(c fiber.Ctx) (*workflow.Edge, error) {
	var req edgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, invalid("invalid body")
	}
	req.FromNodeRef, req.ToNodeRef = "", ""
	return req.toEdge()
}

func (h *handler) addEdge(c fiber.Ctx) error {
	edge, err := bindEdge(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := h.store.AddEdge(c.Context(), edge)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"id": id})
}

func (h *handler) listEdges(c fiber.Ctx) error {
	workflowID, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	edges, err := h.store.ListEdges(c.Context(), workflowID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(edges)
}

func (h *handler) getEdge(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	e, err := h.store.GetEdge(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if e == nil {
		return c.Status(404).JSON(fiber.Map{"error": "edge not found"})
	}
	return c.JSON(e)
}

func (h *handler) updateEdge(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	edge, err := bindEdge(c)
	if err != nil {
		return h.fail(c, err)
	}
	edge.ID = id
	if err := h.store.UpdateEdge(c.Context(), edge); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(204)
}

func (h *handler) deleteEdge(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.store.DeleteEdge(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(204)
}
