package controllers

import (
	"errors"
	"strings"

	"github.com/fasthttp/router"
	"github.com/freshersjob/freshersjob/internal/perrors"
	"github.com/freshersjob/freshersjob/internal/services"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/savedjob"
	"github.com/valyala/fasthttp"
)

type SetJobStatusRequest struct {
	Status job.Status `json:"status"`
}

func RegisterJobRoutes(r *router.Router, svc *services.Services) {
	r.GET("/api/jobs", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		limit, err := queryInt(ctx, "limit")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid limit", err)
			return
		}

		jobs, err := svc.Job.List(stdCtx, job.ListQuery{
			Status:     job.Status(queryString(ctx, "status")),
			EmployerID: queryString(ctx, "employer_id"),
			Order:      queryString(ctx, "order"),
			Limit:      limit,
		})
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list jobs", err)
			return
		}

		writeOK(ctx, stdCtx, "Jobs retrieved successfully", jobs)
	})

	r.GET("/api/jobs/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid job ID", err)
			return
		}

		j, err := svc.Job.Get(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Job not found", err)
			return
		}

		writeOK(ctx, stdCtx, "Job retrieved successfully", j)
	})

	r.POST("/api/jobs", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		var req job.CreateJobRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		created, err := svc.Job.Create(stdCtx, me.Email, &req)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create job", err)
			return
		}

		writeCreated(ctx, stdCtx, "Job created successfully", created)
	})

	r.PUT("/api/jobs/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid job ID", err)
			return
		}

		var req job.UpdateJobRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		updated, err := svc.Job.Update(stdCtx, me.Email, id, &req)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to update job", err)
			return
		}

		writeOK(ctx, stdCtx, "Job updated successfully", updated)
	})

	r.PATCH("/api/jobs/{id}/status", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid job ID", err)
			return
		}

		var req SetJobStatusRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		updated, err := svc.Job.SetStatus(stdCtx, me.Email, id, req.Status)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to update job status", err)
			return
		}

		writeOK(ctx, stdCtx, "Job status updated successfully", updated)
	})

	r.DELETE("/api/jobs/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid job ID", err)
			return
		}

		if err := svc.Job.Delete(stdCtx, me.Email, id); err != nil {
			writeError(ctx, stdCtx, "Failed to delete job", err)
			return
		}

		writeOK(ctx, stdCtx, "Job deleted successfully", nil)
	})

	r.POST("/api/jobs/save", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		var req savedjob.SaveRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		saved, err := svc.SavedJob.Save(stdCtx, me.Email, &req)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to save job", err)
			return
		}

		writeCreated(ctx, stdCtx, "Job saved successfully", saved)
	})

	r.POST("/api/jobs/{id}/toggle-save", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid job ID", err)
			return
		}

		res, err := svc.Views.ToggleSave(stdCtx, sessionFrom(ctx), id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to toggle saved job", err)
			return
		}

		writeOK(ctx, stdCtx, "success", res)
	})

	r.GET("/api/jobs/saved/{user_id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		owner, err := pathParam(ctx, "user_id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid user ID", err)
			return
		}
		if !strings.EqualFold(owner, me.Email) {
			writeError(ctx, stdCtx, "Forbidden", perrors.NewErrForbidden("saved jobs belong to another account", errors.New("saved jobs belong to another account")))
			return
		}

		rows, err := svc.SavedJob.SavedWithJobs(stdCtx, me.Email)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list saved jobs", err)
			return
		}

		writeOK(ctx, stdCtx, "Saved jobs retrieved successfully", rows)
	})

	r.DELETE("/api/saved-jobs/{job_id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		jobID, err := pathParamUUID(ctx, "job_id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid job ID", err)
			return
		}

		if err := svc.SavedJob.Unsave(stdCtx, me.Email, jobID); err != nil {
			writeError(ctx, stdCtx, "Failed to unsave job", err)
			return
		}

		writeOK(ctx, stdCtx, "Job removed from saved", nil)
	})
}
