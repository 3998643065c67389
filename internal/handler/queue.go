package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func (h *Handler) publishToQueue(queueName string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.queueChannel.PublishWithContext(
		ctx,
		"",
		queueName,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (h *Handler) publishMail(mailMessage domain.MailMessage) error {
	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}
	return h.publishToQueue("email_queue", mailData)
}

// publishAudit 把审计记录发到 audit_queue，由 audit worker 持久化。
// 审计失败不应该影响业务操作本身，所以调用方只记录日志，不返回错误给客户端。
func (h *Handler) publishAudit(actor *domain.User, action string, entityType string, entityID int64, description string, before any, after any) error {
	record := domain.AuditRecord{
		ActorID:     actor.ID,
		ActorEmail:  actor.Email,
		ActorName:   actor.FullName,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if before != nil {
		beforeData, err := json.Marshal(before)
		if err != nil {
			return err
		}
		record.Before = beforeData
	}
	if after != nil {
		afterData, err := json.Marshal(after)
		if err != nil {
			return err
		}
		record.After = afterData
	}

	recordData, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return h.publishToQueue("audit_queue", recordData)
}
