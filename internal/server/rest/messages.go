package rest

// Response messages.
const (
	msgValidationFailed      = "Validation failed"
	msgInternalServerError   = "Internal server error"
	msgTokenNotFound         = "Authorization token not found"
	msgAuthenticationFailed  = "Authentication failed"
	msgInsufficientPerms     = "Insufficient permissions"
	msgUserExists            = "User already exists"
	msgRoleAssignmentFailed  = "Role assignment failed"
	msgUserRegistered        = "User registered successfully"
	msgInvalidCredentials    = "Invalid credentials"
	msgInvalidOrInactive     = "Invalid credentials or inactive account"
	msgUserSignedIn          = "User signed in successfully"
	msgUserNotFound          = "User not found"
	msgResetLinkSent         = "Password reset link sent to your email"
	msgInvalidResetToken     = "Invalid or expired reset token"
	msgPasswordReset         = "Password has been reset successfully"
	msgUsersRetrieved        = "Users retrieved successfully"
	msgProfileRetrieved      = "User profile retrieved successfully"
	msgUserUpdated           = "User updated successfully"
	msgUserDeleted           = "User deleted successfully"
	msgRoleAssigned          = "Role assigned to user successfully"
	msgRoleRemoved           = "Role removed from user successfully"
	msgRoleNotFound          = "Role not found"
	msgRoleExists            = "Role with this name already exists"
	msgRoleCreated           = "Role created successfully"
	msgRolesRetrieved        = "Roles retrieved successfully"
	msgRoleRetrieved         = "Role retrieved successfully"
	msgRoleUpdated           = "Role updated successfully"
	msgRoleDeleted           = "Role deleted successfully"
	msgPermissionsRetrieved  = "Permissions retrieved successfully"
	msgPostNotFound          = "Post not found"
	msgPostsRetrieved        = "Posts retrieved successfully"
	msgPostRetrieved         = "Post retrieved successfully"
	msgPostCreated           = "Post created successfully"
	msgPostUpdated           = "Post updated successfully"
	msgPostDeleted           = "Post deleted successfully"
	msgDataRetrieved         = "Data retrieved successfully"
	msgMasterDataSynced      = "Master data synchronized successfully"
	msgMasterDataNotFound    = "No master data found for the specified type"
	msgInvalidMasterDataType = "Invalid master data type"
	msgPhotoStoreDisabled    = "Profile photo uploads are not enabled"
	msgUnsupportedFileType   = "Profile photo must be a JPEG, PNG, GIF or WebP image"
	msgFileTooLarge          = "Profile photo must not exceed 5MB"
	msgInvalidAddressJSON    = "Invalid JSON in address field"
	msgNotFound              = "Route not found"
	msgHealthy               = "Service is healthy"
	msgUnhealthy             = "Service is unhealthy"
	msgDetailsFieldErrors    = "Please check the field errors below"
)
