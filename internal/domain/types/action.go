package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"

	ActionActivateBeacon  = "activate_beacon"
	ActionLocationUpdate  = "location_update"
	ActionBroadcastPickup = "broadcast_pickup"
	ActionTripTracker     = "trip_tracker"
)
