package reconciliation

import gcal "google.golang.org/api/calendar/v3"

// Private extended property stamped on every event this tool creates or updates.
// It is the only evidence that an event may be deleted once its file is gone.
const (
	ManagedByProperty = "managed-by"
	ManagedByValue    = "quarkus-calendars"
)

func managedProperties() *gcal.EventExtendedProperties {
	return &gcal.EventExtendedProperties{
		Private: map[string]string{ManagedByProperty: ManagedByValue},
	}
}

// IsManagedByUs reports whether the remote event carries the managed marker.
// Ownership is never inferred from title, description or creation time.
func IsManagedByUs(remote *gcal.Event) bool {
	if remote == nil || remote.ExtendedProperties == nil || remote.ExtendedProperties.Private == nil {
		return false
	}
	return remote.ExtendedProperties.Private[ManagedByProperty] == ManagedByValue
}
