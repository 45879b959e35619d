package validation

// Encoded engineering knowledge that makes validation deterministic.
// All numbers are conservative real-world estimates, not theoretical
// maximums.

// benchmark holds per-node throughput figures for one technology.
type benchmark struct {
	RPS          int64 // requests/sec (or messages/sec for brokers)
	WriteRPS     int64
	WithReplicas int64
}

var throughputBenchmarks = map[string]benchmark{
	// Databases
	"postgresql":  {RPS: 10_000, WriteRPS: 5_000, WithReplicas: 50_000},
	"postgres":    {RPS: 10_000, WriteRPS: 5_000, WithReplicas: 50_000},
	"mysql":       {RPS: 10_000, WriteRPS: 5_000, WithReplicas: 40_000},
	"mongodb":     {RPS: 25_000, WriteRPS: 15_000, WithReplicas: 100_000},
	"cassandra":   {RPS: 50_000, WriteRPS: 50_000, WithReplicas: 200_000},
	"dynamodb":    {RPS: 40_000, WriteRPS: 40_000, WithReplicas: 1_000_000},
	"cockroachdb": {RPS: 8_000, WriteRPS: 3_000, WithReplicas: 30_000},
	"tidb":        {RPS: 15_000, WriteRPS: 8_000, WithReplicas: 60_000},

	// Caches
	"redis":       {RPS: 100_000, WriteRPS: 80_000},
	"memcached":   {RPS: 200_000, WriteRPS: 200_000},
	"elasticache": {RPS: 100_000, WriteRPS: 80_000},

	// Message brokers (RPS field doubles as messages/sec)
	"kafka":         {RPS: 200_000},
	"rabbitmq":      {RPS: 30_000},
	"sqs":           {RPS: 3_000},
	"nats":          {RPS: 500_000},
	"pulsar":        {RPS: 100_000},
	"redis_streams": {RPS: 100_000},

	// Web servers / API frameworks
	"nginx":       {RPS: 50_000},
	"envoy":       {RPS: 40_000},
	"haproxy":     {RPS: 60_000},
	"fastapi":     {RPS: 8_000},
	"express":     {RPS: 5_000},
	"spring_boot": {RPS: 3_000},
	"spring":      {RPS: 3_000},
	"django":      {RPS: 2_000},
	"flask":       {RPS: 1_500},
	"go_net_http": {RPS: 30_000},
	"actix":       {RPS: 40_000},
	"fiber":       {RPS: 25_000},
}

// componentAvailability holds single-instance availability estimates,
// no redundancy assumed.
var componentAvailability = map[string]float64{
	// Load balancers (managed)
	"alb":                 0.9999,
	"nlb":                 0.9999,
	"elb":                 0.9999,
	"cloud_load_balancer": 0.9999,
	"load_balancer":       0.9995,

	// Compute
	"ec2":             0.9995,
	"ecs":             0.9999,
	"eks":             0.9995,
	"lambda":          0.9999,
	"cloud_run":       0.9999,
	"cloud_functions": 0.9999,
	"fargate":         0.9999,
	"kubernetes":      0.9995,
	"vm":              0.9990,

	// Databases
	"rds":          0.9995,
	"rds_multi_az": 0.9999,
	"aurora":       0.9999,
	"dynamodb":     0.9999,
	"cloud_sql":    0.9995,
	"cosmosdb":     0.9999,
	"postgresql":   0.9990,
	"mysql":        0.9990,
	"mongodb":      0.9990,
	"cassandra":    0.9995,

	// Caches
	"elasticache":   0.9999,
	"redis":         0.9990,
	"redis_cluster": 0.9999,
	"memcached":     0.9990,

	// Message brokers
	"msk":         0.9999,
	"kafka":       0.9990,
	"sqs":         0.9999,
	"sns":         0.9999,
	"rabbitmq":    0.9990,
	"eventbridge": 0.9999,

	// Storage
	"s3":  0.99999,
	"gcs": 0.99999,
	"ebs": 0.9999,

	// API gateways
	"api_gateway": 0.9999,
	"apigee":      0.9999,
	"kong":        0.9995,

	// CDN
	"cloudfront": 0.9999,
	"cloudflare": 0.9999,

	// Default
	"service":      0.9995,
	"microservice": 0.9995,
}

var eventuallyConsistentDBs = []string{
	"cassandra", "dynamodb", "cosmosdb", "couchdb", "couchbase",
	"riak", "voldemort", "scylladb",
}

var messageBrokers = []string{
	"kafka", "rabbitmq", "sqs", "sns", "nats", "pulsar",
	"eventbridge", "redis_streams", "kinesis", "pubsub",
	"cloud_pubsub", "msk", "amazon_mq", "activemq", "zeromq",
}

var enterpriseServices = []string{
	"kafka", "msk", "kubernetes", "eks", "gke", "aks",
	"aurora", "spanner", "cosmosdb", "redshift", "bigquery",
	"databricks", "snowflake", "elasticsearch", "opensearch",
	"istio", "consul", "vault", "terraform",
}

// requirementCheck maps requirement keywords to the component coverage
// expected in the design.
type requirementCheck struct {
	Name     string
	Keywords []string
	Code     Code
}

var requirementChecks = []requirementCheck{
	{"auth", []string{"auth", "authentication", "login", "oauth", "sso", "jwt", "identity"}, CodeMissingAuth},
	{"analytics", []string{"analytics", "tracking", "metrics", "dashboard", "reporting", "insights"}, CodeMissingAnalytics},
	{"disaster_recovery", []string{"disaster recovery", "DR", "RPO", "RTO", "backup", "failover"}, CodeMissingDR},
	{"monitoring", []string{"monitoring", "observability", "alerting", "health check"}, CodeMissingMonitoring},
	{"encryption", []string{"encryption", "encrypted", "TLS", "SSL", "encrypt at rest", "PCI"}, CodeMissingEncryption},
	{"rate_limiting", []string{"rate limit", "throttle", "rate-limit", "throttling", "quota"}, CodeMissingRateLimiting},
	{"search", []string{"search", "full-text search", "elasticsearch", "opensearch"}, CodeMissingSearch},
	{"notification", []string{"notification", "push notification", "alert", "email notification", "SMS"}, CodeMissingNotification},
	{"caching", []string{"cache", "caching", "low latency", "sub-100ms", "sub-50ms"}, CodeMissingCaching},
}
