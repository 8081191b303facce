package server

// SessionCookieName 是管理会话 cookie 名；会话里只保存操作人身份（requestor_email / requestor_user_id）。
const SessionCookieName = "gaps_session"
