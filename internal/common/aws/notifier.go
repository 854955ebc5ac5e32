package aws

import (
	"context"
	"encoding/json"
	"fmt"

	appconfig "pos-onboarding-workers/internal/common/config"
	"pos-onboarding-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/config"
)

const EventVerificationPassed = "kyc.verification.passed"

// Announcement tells the sales team a business finished identity verification.
type Announcement struct {
	SessionID    string `json:"sessionId"`
	BusinessName string `json:"businessName"`
	BuyNowLink   string `json:"buyNowLink"`
}

// SalesNotifier fans an announcement out to SNS and SES. Either channel may
// be nil. Failures are logged and never returned.
type SalesNotifier struct {
	sns        *SNSClient
	ses        *SESClient
	salesEmail string
	logger     logger.Logger
}

func NewSalesNotifier(snsClient *SNSClient, sesClient *SESClient, salesEmail string, log logger.Logger) *SalesNotifier {
	return &SalesNotifier{sns: snsClient, ses: sesClient, salesEmail: salesEmail, logger: log}
}

// NewSalesNotifierFromConfig loads the default AWS credential chain and
// enables the channels switched on in cfg. It returns a notifier with no
// channels when both are disabled.
func NewSalesNotifierFromConfig(ctx context.Context, cfg appconfig.AWSConfig, log logger.Logger) (*SalesNotifier, error) {
	n := &SalesNotifier{salesEmail: cfg.SES.SalesEmail, logger: log}
	if !cfg.SNS.Enabled && !cfg.SES.Enabled {
		return n, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.SNS.Enabled {
		n.sns = NewSNSClient(awsCfg, cfg.SNS.TopicARN)
	}
	if cfg.SES.Enabled {
		n.ses = NewSESClient(awsCfg, cfg.SES.FromEmail)
	}
	return n, nil
}

// Notify reports whether at least one channel accepted the announcement.
func (n *SalesNotifier) Notify(ctx context.Context, a Announcement) bool {
	if n == nil {
		return false
	}
	delivered := false

	if n.sns != nil {
		payload, _ := json.Marshal(a)
		id, err := n.sns.PublishEvent(ctx, EventVerificationPassed, "KYC complete: "+a.BusinessName, string(payload))
		if err != nil {
			n.logger.Warn("SNS publish failed", map[string]interface{}{"error": err.Error(), "businessName": a.BusinessName})
		} else {
			delivered = true
			n.logger.Debug("SNS announcement published", map[string]interface{}{"messageId": id})
		}
	}

	if n.ses != nil && n.salesEmail != "" {
		body := fmt.Sprintf("%s has completed identity verification.\n\nBuy now link: %s\nSession: %s\n",
			a.BusinessName, a.BuyNowLink, a.SessionID)
		id, err := n.ses.SendText(ctx, n.salesEmail, "KYC complete: "+a.BusinessName, body)
		if err != nil {
			n.logger.Warn("SES send failed", map[string]interface{}{"error": err.Error(), "businessName": a.BusinessName})
		} else {
			delivered = true
			n.logger.Debug("SES announcement sent", map[string]interface{}{"messageId": id})
		}
	}
	return delivered
}
