package api

// sampleTemplates are canned requirement sets for demo purposes.
var sampleTemplates = []TemplateResponse{
	{
		ID:          "notification_system",
		Name:        "Real-Time Notification System",
		Description: "E-commerce notification system with push, email, SMS, and in-app channels",
		Complexity:  "complex",
		Requirements: "Design a real-time notification system for an e-commerce platform.\n\n" +
			"Requirements:\n" +
			"- 50M registered users, 5M DAU\n" +
			"- Push notifications, email, SMS, in-app\n" +
			"- User preference management (opt-in/out per channel)\n" +
			"- Rate limiting to prevent notification fatigue\n" +
			"- Multi-region deployment (US, EU, Asia)\n" +
			"- Sub-500ms delivery for push notifications\n" +
			"- Event-driven architecture\n" +
			"- Delivery tracking and analytics",
	},
	{
		ID:          "payment_gateway",
		Name:        "Payment Processing Gateway",
		Description: "PCI-compliant payment gateway with multi-currency support",
		Complexity:  "complex",
		Requirements: "Design a payment processing gateway for a marketplace platform.\n\n" +
			"Requirements:\n" +
			"- Process 10K transactions/minute at peak\n" +
			"- Support credit cards, debit cards, UPI, bank transfers\n" +
			"- Multi-currency (USD, EUR, GBP, INR)\n" +
			"- PCI DSS Level 1 compliance\n" +
			"- Idempotent transaction processing\n" +
			"- Split payments (marketplace takes commission)\n" +
			"- Real-time fraud detection\n" +
			"- Reconciliation and settlement system\n" +
			"- 99.99% uptime SLA",
	},
	{
		ID:          "chat_platform",
		Name:        "Real-Time Chat Platform",
		Description: "Scalable chat platform with group chats, media sharing, and E2E encryption",
		Complexity:  "medium",
		Requirements: "Design a real-time chat platform similar to Slack/Discord.\n\n" +
			"Requirements:\n" +
			"- 1M concurrent users\n" +
			"- 1:1 and group chats (up to 500 members)\n" +
			"- Media sharing (images, files up to 100MB)\n" +
			"- Message search across history\n" +
			"- Read receipts and typing indicators\n" +
			"- End-to-end encryption for 1:1 chats\n" +
			"- Push notifications for offline users\n" +
			"- Message retention: 1 year",
	},
	{
		ID:          "data_pipeline",
		Name:        "Real-Time Data Pipeline",
		Description: "Event streaming pipeline for analytics with sub-second latency",
		Complexity:  "medium",
		Requirements: "Design a real-time data pipeline for an analytics platform.\n\n" +
			"Requirements:\n" +
			"- Ingest 1M events/second from web and mobile clients\n" +
			"- Sub-second latency for real-time dashboards\n" +
			"- Batch processing for historical analysis\n" +
			"- Schema evolution support\n" +
			"- Data quality validation and dead-letter queues\n" +
			"- Multi-tenant isolation\n" +
			"- GDPR compliance (data deletion, export)\n" +
			"- 30-day hot storage, 2-year cold storage",
	},
}
