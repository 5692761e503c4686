package console

import (
	"fmt"

	"github.com/kalambet/qareview/internal/kb"
)

const (
	msgNetworkError        = "网络错误，请稍后重试"
	msgEmptyQA             = "问题和答案不能为空"
	msgNoClassification    = "请先选择文档分类"
	msgBadClassification   = "无效的文档分类"
	msgNoTargetDocument    = "请选择目标文档"
	msgNothingPending      = "没有待确认的操作"
	msgSegmentGone         = "该QA已不存在，请刷新"
	msgApproved            = "审核通过"
	msgDeleted             = "删除成功"
	msgSaved               = "保存成功"
	msgInvalidPage         = "请输入有效的页码"
	msgFetchSegmentFailed  = "获取分段数据失败"
	msgDuplicateSaved      = "保存成功，正在重新查重..."
	msgDuplicateDeleted    = "删除成功，正在重新查重..."
	msgLoadFailed          = "加载失败: "
	msgLoadDocumentsFailed = "加载文档列表失败: "
	msgApproveFailed       = "审核失败: "
	msgOperationFailed     = "操作失败: "
	msgDeleteFailed        = "删除失败: "
	msgSaveFailed          = "保存失败: "
	msgCheckFailed         = "查重失败: "
)

// failureMessage turns a gateway error into a toast: backend rejections
// carry the server text after prefix, anything else is a network error.
func failureMessage(prefix string, err error) string {
	if msg, ok := kb.IsRejected(err); ok {
		return prefix + msg
	}
	return msgNetworkError
}

func pageRangeMessage(totalPages int) string {
	return fmt.Sprintf("页码超出范围，请输入1-%d之间的数字", totalPages)
}

func jumpedMessage(page int) string {
	return fmt.Sprintf("已跳转到第 %d 页", page)
}

func flushMessage(ok, failed int) (ToastLevel, string) {
	if failed == 0 {
		return ToastSuccess, fmt.Sprintf("成功保存 %d 个编辑", ok)
	}
	return ToastWarning, fmt.Sprintf("保存完成: 成功 %d 个, 失败 %d 个", ok, failed)
}

func classifiedMessage(name string) string {
	return "分类已更改为: " + name
}
