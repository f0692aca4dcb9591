package types

import "strings"

type RecordType string

const (
	RecordTypePolicies              RecordType = "policies"
	RecordTypePackages              RecordType = "packages"
	RecordTypeScripts               RecordType = "scripts"
	RecordTypeCategories            RecordType = "categories"
	RecordTypeComputers             RecordType = "computers"
	RecordTypeComputerGroups        RecordType = "computer_groups"
	RecordTypeMobileDevices         RecordType = "mobile_devices"
	RecordTypeMobileDeviceGroups    RecordType = "mobile_device_groups"
	RecordTypeConfigurationProfiles RecordType = "configuration_profiles"
	RecordTypeExtensionAttributes   RecordType = "extension_attributes"
	RecordTypePatchSoftwareTitles   RecordType = "patch_software_titles"
	RecordTypePatchPolicies         RecordType = "patch_policies"
)

// RecordTypes lists every record type the tool can address, in the
// order they are shown in help output.
var RecordTypes = []RecordType{
	RecordTypePolicies,
	RecordTypePackages,
	RecordTypeScripts,
	RecordTypeCategories,
	RecordTypeComputers,
	RecordTypeComputerGroups,
	RecordTypeMobileDevices,
	RecordTypeMobileDeviceGroups,
	RecordTypeConfigurationProfiles,
	RecordTypeExtensionAttributes,
	RecordTypePatchSoftwareTitles,
	RecordTypePatchPolicies,
}

type OutputMode string

const (
	OutputModeText OutputMode = "text"
	OutputModeLong OutputMode = "long"
	OutputModeJSON OutputMode = "json"
)

type StoreBackend string

const (
	StoreBackendHTTP StoreBackend = "http"
	StoreBackendFile StoreBackend = "file"
)

// ParseRecordType maps a command-line record type onto the closed set.
// Dashes are accepted in place of underscores.
func ParseRecordType(value string) (RecordType, bool) {
	normalized := RecordType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_"))
	for _, known := range RecordTypes {
		if known == normalized {
			return known, true
		}
	}
	return "", false
}

// TracksVersions reports whether records of the type publish software
// versions that patch policies can target.
func (t RecordType) TracksVersions() bool {
	return t == RecordTypePatchSoftwareTitles
}
