package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
)

// Deliverable lifecycle. Statuses move pending -> in_review -> approved or
// rejected; a reviewer verdict may set any status (pending/in_review act as
// an explicit reset). The one hard rule is that uploading a new file always
// resets the deliverable to pending and discards the previous review.

func (svc *service) AddDeliverable(taskID string, nd NewDeliverable) (Deliverable, error) {
	ctx := context.Background()
	tsk, err := svc.repo.GetTask(ctx, taskID)
	if err != nil {
		return Deliverable{}, err
	}

	now := time.Now().UTC()
	dlv := Deliverable{
		ID:          uuid.New().String(),
		TaskID:      tsk.ID,
		Name:        nd.Name,
		Description: nd.Description,
		Status:      DeliverablePending,
		DueDate:     nd.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tsk.Deliverables = append(tsk.Deliverables, dlv)
	tsk.UpdatedAt = now
	if _, err = svc.repo.UpdateTask(ctx, tsk); err != nil {
		return Deliverable{}, err
	}
	return dlv, nil
}

func (svc *service) UpdateDeliverable(id string, ud UpdateDeliverable) (Deliverable, error) {
	ctx := context.Background()
	tsk, idx, err := svc.taskAndDeliverable(ctx, id)
	if err != nil {
		return Deliverable{}, err
	}

	dlv := &tsk.Deliverables[idx]
	if ud.Name != "" {
		dlv.Name = ud.Name
	}
	if ud.Description != "" {
		dlv.Description = ud.Description
	}
	if ud.DueDate != nil {
		dlv.DueDate = ud.DueDate
	}
	dlv.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateTask(ctx, tsk); err != nil {
		return Deliverable{}, err
	}
	return *dlv, nil
}

// DeleteDeliverable removes the record and its stored file. No soft delete.
func (svc *service) DeleteDeliverable(id string) error {
	ctx := context.Background()
	tsk, idx, err := svc.taskAndDeliverable(ctx, id)
	if err != nil {
		return err
	}

	dlv := tsk.Deliverables[idx]
	tsk.Deliverables = append(tsk.Deliverables[:idx], tsk.Deliverables[idx+1:]...)
	tsk.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateTask(ctx, tsk); err != nil {
		return err
	}
	if dlv.File != nil {
		svc.removeFiles([]string{dlv.File.Path})
	}
	return nil
}

// UploadDeliverableFile stores the file and replaces any previous one. The
// deliverable always comes back pending with the prior review cleared: a
// fresh submission invalidates the previous verdict. Concurrent uploads to
// the same deliverable are last-write-wins; the loser's file is overwritten,
// never merged.
func (svc *service) UploadDeliverableFile(id string, up FileUpload, actorID string) (Deliverable, error) {
	ctx := context.Background()
	tsk, idx, err := svc.taskAndDeliverable(ctx, id)
	if err != nil {
		return Deliverable{}, err
	}

	path, err := svc.storage.Save(ctx, up.Filename, up.Content)
	if err != nil {
		return Deliverable{}, errors.Wrap(err, "storing deliverable file")
	}

	now := time.Now().UTC()
	dlv := &tsk.Deliverables[idx]
	prevFile := dlv.File
	dlv.File = &FileInfo{
		Path:         path,
		URL:          svc.storage.URL(path),
		OriginalName: up.Filename,
		ContentType:  up.ContentType,
		Size:         up.Size,
		UploadedBy:   actorID,
		UploadedAt:   now,
	}
	dlv.Status = DeliverablePending
	dlv.Feedback = ""
	dlv.ReviewerID = ""
	dlv.ReviewedAt = nil
	dlv.UpdatedAt = now
	tsk.UpdatedAt = now

	if _, err = svc.repo.UpdateTask(ctx, tsk); err != nil {
		// keep storage consistent with the record that was not written
		_ = svc.storage.Delete(ctx, path)
		return Deliverable{}, err
	}
	if prevFile != nil {
		svc.removeFiles([]string{prevFile.Path})
	}

	svc.bus.Publish(core.Event{
		Kind:      core.EventDeliverableUploaded,
		Ref:       dlv.ID,
		ProjectID: tsk.ProjectID,
		ActorID:   actorID,
		TargetID:  tsk.AssigneeID,
		Title:     "Entregable Actualizado",
		Body:      fmt.Sprintf("Se ha subido un archivo al entregable '%s'", dlv.Name),
	})
	return *dlv, nil
}

// SubmitDeliverable hands a pending deliverable over for review. It requires
// an uploaded file; there is nothing to review otherwise.
func (svc *service) SubmitDeliverable(id, actorID string) (Deliverable, error) {
	ctx := context.Background()
	tsk, idx, err := svc.taskAndDeliverable(ctx, id)
	if err != nil {
		return Deliverable{}, err
	}

	dlv := &tsk.Deliverables[idx]
	if dlv.Status != DeliverablePending {
		return Deliverable{}, ErrNotSubmittable
	}
	if dlv.File == nil {
		return Deliverable{}, ErrDeliverableNoFile
	}

	now := time.Now().UTC()
	dlv.Status = DeliverableInReview
	dlv.UpdatedAt = now
	tsk.UpdatedAt = now
	if _, err = svc.repo.UpdateTask(ctx, tsk); err != nil {
		return Deliverable{}, err
	}

	svc.bus.Publish(core.Event{
		Kind:      core.EventDeliverableSubmitted,
		Ref:       dlv.ID,
		ProjectID: tsk.ProjectID,
		ActorID:   actorID,
		Title:     "Entregable en Revisión",
		Body:      fmt.Sprintf("El entregable '%s' está listo para revisión", dlv.Name),
	})
	return *dlv, nil
}

// ReviewDeliverable records a reviewer verdict. Approved and rejected stamp
// the reviewer and time; pending and in_review act as an explicit reset and
// clear them. Authorization is the caller's concern; this only records who
// reviewed.
func (svc *service) ReviewDeliverable(id string, rv ReviewInput, actorID string) (Deliverable, error) {
	ctx := context.Background()
	tsk, idx, err := svc.taskAndDeliverable(ctx, id)
	if err != nil {
		return Deliverable{}, err
	}

	if rv.Status == DeliverableRejected && rv.Feedback == "" {
		return Deliverable{}, core.NewValidationError(nil,
			core.FieldError{Field: "feedback", Error: "feedback is required when rejecting"})
	}

	now := time.Now().UTC()
	dlv := &tsk.Deliverables[idx]
	dlv.Status = rv.Status
	dlv.Feedback = rv.Feedback
	switch rv.Status {
	case DeliverableApproved, DeliverableRejected:
		dlv.ReviewerID = actorID
		dlv.ReviewedAt = &now
	default: // reset to pending / in_review discards the review stamp
		dlv.ReviewerID = ""
		dlv.ReviewedAt = nil
	}
	dlv.UpdatedAt = now
	tsk.UpdatedAt = now
	if _, err = svc.repo.UpdateTask(ctx, tsk); err != nil {
		return Deliverable{}, err
	}

	svc.bus.Publish(core.Event{
		Kind:      core.EventDeliverableReviewed,
		Ref:       dlv.ID,
		ProjectID: tsk.ProjectID,
		ActorID:   actorID,
		TargetID:  tsk.AssigneeID,
		Title:     "Entregable Revisado",
		Body:      fmt.Sprintf("El entregable '%s' ha sido marcado como %s", dlv.Name, dlv.Status),
	})
	return *dlv, nil
}

// taskAndDeliverable loads the task embedding the deliverable and returns
// the deliverable's index within it.
func (svc *service) taskAndDeliverable(ctx context.Context, deliverableID string) (Task, int, error) {
	tsk, err := svc.repo.GetTaskByDeliverable(ctx, deliverableID)
	if err != nil {
		return Task{}, 0, err
	}
	for i := range tsk.Deliverables {
		if tsk.Deliverables[i].ID == deliverableID {
			return tsk, i, nil
		}
	}
	return Task{}, 0, ErrDeliverableNotFound
}
