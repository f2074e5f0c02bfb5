package controllers

import (
	"github.com/fasthttp/router"
	"github.com/freshersjob/freshersjob/internal/api/authenticator"
	"github.com/freshersjob/freshersjob/internal/services"
	"github.com/freshersjob/freshersjob/internal/services/application"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/valyala/fasthttp"
)

func RegisterViewRoutes(r *router.Router, svc *services.Services) {
	views := r.Group("/api/views")

	views.GET("/feed", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		view, err := svc.Views.Feed(stdCtx, sessionFrom(ctx))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to load feed", err)
			return
		}
		writeOK(ctx, stdCtx, "success", view)
	})

	views.GET("/jobs", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		search, err := jobSearchFromQuery(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Invalid search", err)
			return
		}

		view, err := svc.Views.Jobs(stdCtx, sessionFrom(ctx), search)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to load jobs", err)
			return
		}
		writeOK(ctx, stdCtx, "success", view)
	})

	views.GET("/jobs/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid job ID", err)
			return
		}

		view, err := svc.Views.JobDetail(stdCtx, sessionFrom(ctx), id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to load job", err)
			return
		}
		writeOK(ctx, stdCtx, "success", view)
	})

	views.GET("/manage-jobs", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		view, err := svc.Views.ManageJobs(stdCtx, sessionFrom(ctx))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to load jobs", err)
			return
		}
		writeOK(ctx, stdCtx, "success", view)
	})

	views.GET("/applications", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		jobID, err := queryUUID(ctx, "job_id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid job ID", err)
			return
		}

		status := application.Status(queryString(ctx, "status"))
		if status == "all" {
			status = ""
		}

		view, err := svc.Views.Applications(stdCtx, sessionFrom(ctx), jobID, status)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to load applications", err)
			return
		}
		writeOK(ctx, stdCtx, "success", view)
	})

	views.GET("/my-applications", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		view, err := svc.Views.MyApplications(stdCtx, sessionFrom(ctx))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to load applications", err)
			return
		}
		writeOK(ctx, stdCtx, "success", view)
	})

	views.GET("/saved-jobs", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		view, err := svc.Views.SavedJobs(stdCtx, sessionFrom(ctx))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to load saved jobs", err)
			return
		}
		writeOK(ctx, stdCtx, "success", view)
	})

	views.GET("/profile", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		view, err := svc.Views.Profile(stdCtx, sessionFrom(ctx))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to load profile", err)
			return
		}
		writeOK(ctx, stdCtx, "success", view)
	})

	views.GET("/onboarding", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		state, err := svc.Views.OnboardingState(stdCtx, sessionFrom(ctx), profile.Role(queryString(ctx, "pending_role")))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to load onboarding", err)
			return
		}
		writeOK(ctx, stdCtx, "success", state)
	})

	r.POST("/api/onboarding", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req profile.OnboardRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		state, err := svc.Views.Onboard(stdCtx, sessionFrom(ctx), &req)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to save profile", err)
			return
		}
		writeOK(ctx, stdCtx, "Profile saved successfully", state)
	})

	r.DELETE("/api/account", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		res, err := svc.Views.DeleteAccount(stdCtx, sessionFrom(ctx))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to delete account", err)
			return
		}

		authenticator.SignOut(ctx)
		writeOK(ctx, stdCtx, "Account deleted successfully", res)
	})
}

func jobSearchFromQuery(ctx *fasthttp.RequestCtx) (job.JobSearch, error) {
	search := job.JobSearch{
		Query:            queryString(ctx, "q"),
		Location:         queryString(ctx, "location"),
		ExperienceLevels: queryList(ctx, "experience_level"),
		Sort:             queryString(ctx, "sort"),
	}
	for _, t := range queryList(ctx, "job_type") {
		search.JobTypes = append(search.JobTypes, job.JobType(t))
	}

	var err error
	if search.SalaryMin, err = queryFloat(ctx, "salary_min"); err != nil {
		return search, err
	}
	if search.SalaryMax, err = queryFloat(ctx, "salary_max"); err != nil {
		return search, err
	}
	return search, nil
}
