package main

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/assembly"
	"github.com/meikuraledutech/workflow/graph"
	"github.com/meikuraledutech/workflow/render"
)

type edgeTrace struct {
	From   int64        `json:"from_node_id"`
	To     int64        `json:"to_node_id"`
	Branch graph.Branch `json:"branch,omitempty"`
	Weight int          `json:"weight"`
	Taken  bool         `json:"taken"`
}

type conditionFailure struct {
	NodeID    int64  `json:"node_id"`
	Condition string `json:"condition"`
	Error     string `json:"error"`
}

type runResponse struct {
	RunID      string             `json:"run_id"`
	WorkflowID int64              `json:"workflow_id"`
	Order      []int64            `json:"order"`
	Decisions  map[int64]bool     `json:"decisions"`
	Edges      []edgeTrace        `json:"edges"`
	Failures   []conditionFailure `json:"failures"`
	DurationMS float64            `json:"duration_ms"`
}

func newRunResponse(run *assembly.Run) runResponse {
	resp := runResponse{
		RunID:      run.ID,
		WorkflowID: run.WorkflowID,
		Order:      run.Result.Order,
		Decisions:  run.Result.Decisions,
		Edges:      []edgeTrace{},
		Failures:   []conditionFailure{},
		DurationMS: float64(run.Duration.Microseconds()) / 1000,
	}
	for _, e := range run.Graph.Edges() {
		resp.Edges = append(resp.Edges, edgeTrace{
			From:   e.From,
			To:     e.To,
			Branch: e.Branch,
			Weight: e.Weight,
			Taken:  e.Taken(),
		})
	}
	for _, f := range run.Result.Failures {
		resp.Failures = append(resp.Failures, conditionFailure{
			NodeID:    f.NodeID,
			Condition: f.Condition,
			Error:     f.Err.Error(),
		})
	}
	return resp
}

func (h *handler) validateWorkflow(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := h.runner.Load(c.Context(), id); err != nil {
		if statusFor(err) == fiber.StatusUnprocessableEntity {
			return c.Status(422).JSON(fiber.Map{"valid": false, "error": err.Error()})
		}
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"valid": true})
}

// run executes a workflow and records metrics.
func (h *handler) run(c fiber.Ctx, id int64) (*assembly.Run, error) {
	run, err := h.runner.Run(c.Context(), id)
	switch {
	case err == nil:
		h.metrics.runs.WithLabelValues("executed").Inc()
		h.metrics.runDuration.Observe(run.Duration.Seconds())
		h.metrics.conditionFailures.Add(float64(len(run.Result.Failures)))
	case errors.Is(err, workflow.ErrWorkflowNotFound):
		// not a run
	case statusFor(err) == fiber.StatusUnprocessableEntity:
		h.metrics.runs.WithLabelValues("rejected").Inc()
	default:
		h.metrics.runs.WithLabelValues("error").Inc()
	}
	return run, err
}

func (h *handler) executeWorkflow(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	run, err := h.run(c, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(newRunResponse(run))
}

func (h *handler) drawWorkflow(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.fail(c, err)
	}
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		return h.fail(c, invalid("%v", err))
	}
	run, err := h.run(c, id)
	if err != nil {
		return h.fail(c, err)
	}

	img, err := render.Draw(c.Context(), run.Graph, format)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(img)
}
