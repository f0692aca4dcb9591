package adapters

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"mdmctl/internal/core"
	"mdmctl/internal/types"
)

// recordEndpoint describes how one record type is laid out on the server.
type recordEndpoint struct {
	// collection is the resource segment under the API root.
	collection string
	// listKey wraps the listing array, itemKey wraps a single record body.
	listKey string
	itemKey string
	// uploadResource is the fileuploads segment; empty when the type
	// does not accept attachments.
	uploadResource string
	// filters maps a list filter path onto the sub-collection that
	// evaluates it server-side.
	filters      map[string]string
	capabilities types.RecordCapabilities
}

var fullCapabilities = types.RecordCapabilities{Create: true, Update: true, Delete: true}

var recordEndpoints = map[types.RecordType]recordEndpoint{
	types.RecordTypePolicies: {
		collection:     "policies",
		listKey:        "policies",
		itemKey:        "policy",
		uploadResource: "policies",
		capabilities:   withUpload(fullCapabilities),
	},
	types.RecordTypePackages: {
		collection:     "packages",
		listKey:        "packages",
		itemKey:        "package",
		uploadResource: "packages",
		capabilities:   withUpload(fullCapabilities),
	},
	types.RecordTypeScripts: {
		collection:   "scripts",
		listKey:      "scripts",
		itemKey:      "script",
		capabilities: fullCapabilities,
	},
	types.RecordTypeCategories: {
		collection:   "categories",
		listKey:      "categories",
		itemKey:      "category",
		capabilities: fullCapabilities,
	},
	types.RecordTypeComputers: {
		collection:     "computers",
		listKey:        "computers",
		itemKey:        "computer",
		uploadResource: "computers",
		capabilities:   withUpload(fullCapabilities),
	},
	types.RecordTypeComputerGroups: {
		collection:   "computergroups",
		listKey:      "computer_groups",
		itemKey:      "computer_group",
		capabilities: fullCapabilities,
	},
	types.RecordTypeMobileDevices: {
		collection:     "mobiledevices",
		listKey:        "mobile_devices",
		itemKey:        "mobile_device",
		uploadResource: "mobiledevices",
		capabilities:   withUpload(fullCapabilities),
	},
	types.RecordTypeMobileDeviceGroups: {
		collection:   "mobiledevicegroups",
		listKey:      "mobile_device_groups",
		itemKey:      "mobile_device_group",
		capabilities: fullCapabilities,
	},
	types.RecordTypeConfigurationProfiles: {
		collection:   "osxconfigurationprofiles",
		listKey:      "os_x_configuration_profiles",
		itemKey:      "os_x_configuration_profile",
		capabilities: fullCapabilities,
	},
	types.RecordTypeExtensionAttributes: {
		collection:   "computerextensionattributes",
		listKey:      "computer_extension_attributes",
		itemKey:      "computer_extension_attribute",
		capabilities: fullCapabilities,
	},
	types.RecordTypePatchSoftwareTitles: {
		collection:   "patchsoftwaretitles",
		listKey:      "patch_software_titles",
		itemKey:      "patch_software_title",
		capabilities: fullCapabilities,
	},
	types.RecordTypePatchPolicies: {
		collection: "patchpolicies",
		listKey:    "patch_policies",
		itemKey:    "patch_policy",
		filters: map[string]string{
			core.PolicyTitlePath: "softwaretitleconfig/id",
		},
		capabilities: types.RecordCapabilities{Update: true, Delete: true},
	},
}

func withUpload(capabilities types.RecordCapabilities) types.RecordCapabilities {
	capabilities.Upload = true
	return capabilities
}

func lookupEndpoint(recordType types.RecordType) (recordEndpoint, error) {
	endpoint, ok := recordEndpoints[recordType]
	if !ok {
		return recordEndpoint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown record type: %q", recordType))
	}
	return endpoint, nil
}

func capabilityError(recordType types.RecordType, operation string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%s does not support %s", recordType, operation))
}
