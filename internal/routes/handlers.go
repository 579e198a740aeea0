package routes

import (
	"encoding/json"
	"net/http"
	"strconv"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/typetrace/typetrace/internal/service"
	"github.com/typetrace/typetrace/pkg/response"
)

// Server exposes the webhook endpoint and the read-side API.
type Server struct {
	stores service.Stores
	intake *service.Intake
	queue  service.Enqueuer
	log    *zap.SugaredLogger
}

func NewServer(stores service.Stores, intake *service.Intake, q service.Enqueuer, log *zap.SugaredLogger) *Server {
	return &Server{stores: stores, intake: intake, queue: q, log: log}
}

// NewRouter wires all HTTP routes.
func NewRouter(s *Server) *http.ServeMux {
	router := http.NewServeMux()
	router.HandleFunc("/webhook", s.Webhook)
	router.HandleFunc("/projects", s.ListProjects)
	router.HandleFunc("/commits", s.ListCommits)
	router.HandleFunc("/committers", s.ListCommitters)
	// Serve Swagger documentation
	router.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	return router
}

type pushPayload struct {
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
			Name  string `json:"name"`
		} `json:"owner"`
	} `json:"repository"`
	Commits []service.PushCommit `json:"commits"`
}

type commentPayload struct {
	Comment struct {
		ID   int64  `json:"id"`
		Body string `json:"body"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		CommitID string `json:"commit_id"`
	} `json:"comment"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

type installationPayload struct {
	Action       string `json:"action"`
	Installation struct {
		ID int64 `json:"id"`
	} `json:"installation"`
	RepositoriesAdded   []service.InstalledRepo `json:"repositories_added"`
	RepositoriesRemoved []service.InstalledRepo `json:"repositories_removed"`
}

// Webhook receives platform events and hands them to the intake or the queue.
func (s *Server) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.ErrorResponse(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	event := r.Header.Get("X-GitHub-Event")
	switch event {
	case "push":
		var payload pushPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			response.ErrorResponse(w, http.StatusBadRequest, "invalid payload")
			return
		}
		owner := payload.Repository.Owner.Login
		if owner == "" {
			owner = payload.Repository.Owner.Name
		}
		err := s.intake.HandlePush(r.Context(), service.PushEvent{
			Owner:   owner,
			Repo:    payload.Repository.Name,
			Commits: payload.Commits,
		})
		if err != nil {
			s.log.Errorw("push intake failed", "error", err)
			response.ErrorResponse(w, http.StatusInternalServerError, "push handling failed")
			return
		}

	case "commit_comment":
		var payload commentPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			response.ErrorResponse(w, http.StatusBadRequest, "invalid payload")
			return
		}
		ev := service.CommentEvent{
			CommentID: payload.Comment.ID,
			Commenter: payload.Comment.User.Login,
			Body:      payload.Comment.Body,
			CommitSHA: payload.Comment.CommitID,
			Owner:     payload.Repository.Owner.Login,
			Repo:      payload.Repository.Name,
		}
		if _, err := s.queue.Enqueue(r.Context(), service.JobProcessComment, ev); err != nil {
			s.log.Errorw("comment enqueue failed", "error", err)
			response.ErrorResponse(w, http.StatusInternalServerError, "comment handling failed")
			return
		}

	case "installation_repositories":
		var payload installationPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			response.ErrorResponse(w, http.StatusBadRequest, "invalid payload")
			return
		}
		installationID := ""
		if payload.Installation.ID != 0 {
			installationID = strconv.FormatInt(payload.Installation.ID, 10)
		}
		err := s.intake.HandleInstallation(r.Context(), installationID,
			payload.RepositoriesAdded, payload.RepositoriesRemoved)
		if err != nil {
			s.log.Errorw("installation intake failed", "error", err)
			response.ErrorResponse(w, http.StatusInternalServerError, "installation handling failed")
			return
		}

	default:
		// Unhandled event types are acknowledged and dropped.
	}

	response.SuccessResponse(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// ListProjects returns all tracked projects
func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.stores.Projects.ListProjects()
	if err != nil {
		response.ErrorResponse(w, http.StatusInternalServerError, "failed to retrieve projects")
		return
	}
	response.SuccessResponse(w, http.StatusOK, projects)
}

// ListCommitters returns all known committers
func (s *Server) ListCommitters(w http.ResponseWriter, r *http.Request) {
	committers, err := s.stores.Committers.ListCommitters()
	if err != nil {
		response.ErrorResponse(w, http.StatusInternalServerError, "failed to retrieve committers")
		return
	}
	response.SuccessResponse(w, http.StatusOK, committers)
}

// ListCommits returns the evaluated commits of one project
func (s *Server) ListCommits(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	repo := r.URL.Query().Get("repo")
	if owner == "" || repo == "" {
		response.ErrorResponse(w, http.StatusBadRequest, "owner and repo are required")
		return
	}

	project, err := s.stores.Projects.GetProjectByOwnerName(owner, repo)
	if err != nil {
		response.ErrorResponse(w, http.StatusNotFound, "project not found")
		return
	}
	commits, err := s.stores.Commits.GetCommitsByProject(project.ID)
	if err != nil {
		response.ErrorResponse(w, http.StatusInternalServerError, "failed to retrieve commits")
		return
	}
	response.SuccessResponse(w, http.StatusOK, commits)
}
